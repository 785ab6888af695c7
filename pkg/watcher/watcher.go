// Package watcher rechecks a proto directory whenever its files change.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher watches a directory tree for proto changes and invokes a callback
// after a short debounce, coalescing editor save bursts into one recheck.
type Watcher struct {
	dir      string
	debounce time.Duration
	log      *logrus.Logger
}

// New creates a watcher over dir. A nil logger falls back to logrus defaults.
func New(dir string, debounce time.Duration, log *logrus.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if log == nil {
		log = logrus.New()
	}
	return &Watcher{dir: dir, debounce: debounce, log: log}
}

// Run blocks, invoking recheck whenever a .proto file changes, until the
// context is cancelled.
func (w *Watcher) Run(ctx context.Context, recheck func(context.Context)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := addRecursive(fsw, w.dir); err != nil {
		return err
	}

	w.log.WithField("dir", w.dir).Info("watching for proto file changes")

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			// New directories need watching before their files change.
			if event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := addRecursive(fsw, event.Name); err != nil {
						w.log.Warnf("failed to watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}

			if filepath.Ext(event.Name) != ".proto" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			w.log.WithField("file", event.Name).Debug("change detected")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			recheck(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("watcher error: %v", err)
		}
	}
}

// addRecursive adds root and every subdirectory to the fsnotify watcher.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			return nil
		}
		name := fi.Name()
		if path != root && (len(name) > 0 && name[0] == '.' || name == "vendor" || name == "third_party") {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
