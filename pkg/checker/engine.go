package checker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/protocheck/pkg/protomodel"
)

// Engine runs registered rules against loaded schemas
type Engine struct {
	config   *Config
	registry *Registry
}

// NewEngine creates an engine with the given configuration
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config:   config,
		registry: NewRegistry(),
	}
}

// Registry returns the engine's rule registry
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Check evaluates every enabled rule against every schema. Rules run
// concurrently, bounded by the configured worker count; callers get findings
// in unspecified order and must sort before output (the reporter does).
func (e *Engine) Check(ctx context.Context, schemas []*protomodel.Schema) []Finding {
	return e.CheckRules(ctx, schemas, e.registry.Enabled(e.config))
}

// CheckRules evaluates the given rules against every schema.
func (e *Engine) CheckRules(ctx context.Context, schemas []*protomodel.Schema, rules []Rule) []Finding {
	findings := make([]Finding, 0)
	var mu sync.Mutex

	// A zero-value Config must not wedge the group with SetLimit(0).
	workers := e.config.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, schema := range schemas {
		for _, rule := range rules {
			schema, rule := schema, rule
			eg.Go(func() error {
				got := e.runRule(rule, schema)
				if len(got) == 0 {
					return nil
				}
				mu.Lock()
				findings = append(findings, got...)
				mu.Unlock()
				return nil
			})
		}
	}

	// Rules never return errors, only findings.
	_ = eg.Wait()

	return e.applySeverityOverrides(findings)
}

// runRule invokes a single rule, converting a panic inside the rule into a
// warning finding instead of aborting the whole run.
func (e *Engine) runRule(rule Rule, schema *protomodel.Schema) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			findings = []Finding{{
				Rule:     InternalErrorRule,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("rule %s failed: %v", rule.Name(), r),
				File:     schema.File,
			}}
		}
	}()

	got := rule.Check(schema)
	for i := range got {
		if got[i].File == "" {
			got[i].File = schema.File
		}
	}
	return got
}

// applySeverityOverrides rewrites finding severities per config.
func (e *Engine) applySeverityOverrides(findings []Finding) []Finding {
	if e.config == nil || len(e.config.Rules.Severity) == 0 {
		return findings
	}
	for i := range findings {
		if sev, ok := e.config.Rules.Severity[findings[i].Rule]; ok {
			switch Severity(sev) {
			case SeverityError, SeverityWarning, SeverityInfo:
				findings[i].Severity = Severity(sev)
			}
		}
	}
	return findings
}
