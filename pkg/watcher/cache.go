package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protocheck/pkg/protomodel"
)

// CachingLoader wraps a Loader with an expirable LRU of parsed schemas keyed
// by file path and content digest, so watch-mode rechecks reparse only the
// files that actually changed. A file whose imports changed may get a stale
// schema until its own content changes; acceptable for interactive watching.
type CachingLoader struct {
	loader *protomodel.Loader
	cache  *lru.LRU[string, *protomodel.Schema]
	log    *logrus.Logger
}

// NewCachingLoader creates a caching loader holding up to maxEntries parsed
// schemas for at most ttl.
func NewCachingLoader(loader *protomodel.Loader, maxEntries int, ttl time.Duration, log *logrus.Logger) *CachingLoader {
	if maxEntries < 10 {
		maxEntries = 10
	}
	if log == nil {
		log = logrus.New()
	}
	return &CachingLoader{
		loader: loader,
		cache:  lru.NewLRU[string, *protomodel.Schema](maxEntries, nil, ttl),
		log:    log,
	}
}

// LoadDir behaves like Loader.LoadDir but serves unchanged files from cache.
func (c *CachingLoader) LoadDir(ctx context.Context, dir string) ([]*protomodel.Schema, []*protomodel.ParseError, error) {
	paths, err := protomodel.FindProtoFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	sources := make(map[string]string, len(paths))
	byKey := make(map[string]string, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, nil, err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			rel = p
		}
		key := filepath.ToSlash(rel)
		sources[key] = string(data)
		byKey[key] = p
	}

	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var schemas []*protomodel.Schema
	var parseErrs []*protomodel.ParseError
	for _, key := range keys {
		cacheKey := key + "@" + digest(sources[key])
		if schema, ok := c.cache.Get(cacheKey); ok {
			schemas = append(schemas, schema)
			continue
		}

		schema, err := c.loader.ParseWithSources(ctx, key, sources)
		if err != nil {
			var pe *protomodel.ParseError
			if !errors.As(err, &pe) {
				pe = &protomodel.ParseError{File: key, Err: err}
			}
			pe.File = byKey[key]
			c.log.WithField("file", pe.File).Warnf("skipping unparseable file: %v", pe.Err)
			parseErrs = append(parseErrs, pe)
			continue
		}
		schema.File = byKey[key]
		c.cache.Add(cacheKey, schema)
		schemas = append(schemas, schema)
	}

	return schemas, parseErrs, nil
}

func digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:8])
}
