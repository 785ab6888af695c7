package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/protocheck/pkg/checker"
	"github.com/platinummonkey/protocheck/pkg/checker/rules"
	"github.com/platinummonkey/protocheck/pkg/protomodel"
	"github.com/platinummonkey/protocheck/pkg/report"
	"github.com/platinummonkey/protocheck/pkg/watcher"
)

type checkOptions struct {
	path          string
	ruleList      string
	format        string
	configFile    string
	failOnWarning bool
	verbose       bool
	watch         bool
}

// newCheckCommand creates the check command
func newCheckCommand() *Command {
	fs := flag.NewFlagSet("check", flag.ExitOnError)

	var opts checkOptions
	fs.StringVar(&opts.ruleList, "rules", "", "Comma-separated rule IDs or groups to run (default: all)")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json, github")
	fs.StringVar(&opts.configFile, "config", "", "Path to config file (protocheck.yaml)")
	fs.BoolVar(&opts.failOnWarning, "fail-on-warning", false, "Exit non-zero on warnings too")
	fs.BoolVar(&opts.verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&opts.watch, "watch", false, "Recheck whenever proto files change")

	return &Command{
		Name:        "check",
		Description: "Check proto files against API design rules",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			opts.path = fs.Arg(0)
			if opts.path == "" {
				opts.path = "."
			}
			return runCheck(opts)
		},
	}
}

func runCheck(opts checkOptions) error {
	log := newLogger(opts.verbose)

	config, err := loadCheckConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine := checker.NewEngine(config)
	rules.RegisterDefaultRules(engine.Registry())

	selected := engine.Registry().Enabled(config)
	if opts.ruleList != "" {
		selected = engine.Registry().Select(strings.Split(opts.ruleList, ","))
		if len(selected) == 0 {
			return fmt.Errorf("no rules match %q", opts.ruleList)
		}
	}

	loader := protomodel.NewLoader(log)

	if opts.watch {
		return runWatch(opts, engine, selected, loader, log)
	}

	rep, err := checkOnce(context.Background(), opts, engine, selected, newOnceLoader(loader), log)
	if err != nil {
		return err
	}
	if code := rep.ExitCode(opts.failOnWarning); code != 0 {
		return fmt.Errorf("check failed with %d errors, %d warnings",
			rep.Summary.Errors, rep.Summary.Warnings)
	}
	return nil
}

// dirLoader abstracts the plain and caching loaders for checkOnce.
type dirLoader interface {
	LoadDir(ctx context.Context, dir string) ([]*protomodel.Schema, []*protomodel.ParseError, error)
}

type onceLoader struct {
	loader *protomodel.Loader
}

func newOnceLoader(l *protomodel.Loader) dirLoader { return &onceLoader{loader: l} }

func (o *onceLoader) LoadDir(ctx context.Context, dir string) ([]*protomodel.Schema, []*protomodel.ParseError, error) {
	// A single file target is loaded directly.
	if fi, err := os.Stat(dir); err == nil && !fi.IsDir() {
		schema, err := o.loader.LoadFile(ctx, dir)
		if err != nil {
			var pe *protomodel.ParseError
			if cast, ok := err.(*protomodel.ParseError); ok {
				pe = cast
			} else {
				pe = &protomodel.ParseError{File: dir, Err: err}
			}
			return nil, []*protomodel.ParseError{pe}, nil
		}
		return []*protomodel.Schema{schema}, nil, nil
	}
	return o.loader.LoadDir(ctx, dir)
}

// checkOnce runs one load-evaluate-report pass and writes the output.
func checkOnce(ctx context.Context, opts checkOptions, engine *checker.Engine, selected []checker.Rule, loader dirLoader, log *logrus.Logger) (*report.Report, error) {
	schemas, parseErrs, err := loader.LoadDir(ctx, opts.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", opts.path, err)
	}
	if len(schemas) == 0 && len(parseErrs) == 0 {
		fmt.Printf("No proto files found in %s\n", opts.path)
		return report.New(0, nil), nil
	}

	findings := engine.CheckRules(ctx, schemas, selected)

	// Unparseable files surface as error findings so CI fails on them, while
	// the rest of the run still completes.
	for _, pe := range parseErrs {
		findings = append(findings, checker.Finding{
			Rule:     checker.ParseErrorRule,
			Severity: checker.SeverityError,
			Message:  pe.Err.Error(),
			File:     pe.File,
			Pos:      protomodel.Position{Line: pe.Line},
		})
	}

	rep := report.New(len(schemas)+len(parseErrs), findings)

	switch opts.format {
	case "json":
		err = rep.WriteJSON(os.Stdout)
	case "github":
		err = rep.WriteGitHub(os.Stdout)
	default:
		if err = rep.WriteText(os.Stdout); err == nil && opts.verbose {
			err = rep.WriteSummary(os.Stdout)
		}
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"files":    rep.Summary.Files,
		"findings": rep.Summary.Findings,
		"errors":   rep.Summary.Errors,
	}).Debug("check complete")

	return rep, nil
}

// runWatch rechecks on every proto change, caching parsed schemas between
// passes.
func runWatch(opts checkOptions, engine *checker.Engine, selected []checker.Rule, loader *protomodel.Loader, log *logrus.Logger) error {
	caching := watcher.NewCachingLoader(loader, 1024, 10*time.Minute, log)

	pass := func(ctx context.Context) {
		runLog := log.WithField("run_id", uuid.NewString())
		rep, err := checkOnce(ctx, opts, engine, selected, caching, log)
		if err != nil {
			runLog.Errorf("check failed: %v", err)
			return
		}
		runLog.WithFields(logrus.Fields{
			"errors":   rep.Summary.Errors,
			"warnings": rep.Summary.Warnings,
		}).Info("recheck complete")
	}

	ctx := context.Background()
	pass(ctx)

	w := watcher.New(opts.path, 500*time.Millisecond, log)
	return w.Run(ctx, pass)
}

func loadCheckConfig(opts checkOptions) (*checker.Config, error) {
	if opts.configFile != "" {
		return checker.LoadConfig(opts.configFile)
	}
	dir := opts.path
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		dir = "."
	}
	return checker.LoadConfigFromDir(dir)
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}
