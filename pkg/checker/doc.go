// Package checker evaluates API design rules against parsed proto schemas.
//
// # Overview
//
// The engine holds a registry of independent rules. Each rule is a pure
// inspector over an immutable Schema and emits zero or more findings; no
// rule can short-circuit or observe another. This keeps rule selection
// composable: running only the "revisions" group behaves exactly like the
// full run restricted to those findings.
//
// # Rule Groups
//
// lro: long-running operation conventions (operation_info, streaming)
// revisions: resource revision history conventions (marker fields, delete,
// rollback, listing)
//
// # Usage Example
//
//	config, _ := checker.LoadConfigFromDir(".")
//	engine := checker.NewEngine(config)
//	rules.RegisterDefaultRules(engine.Registry())
//
//	findings := engine.Check(ctx, schemas)
//	rep := report.New(len(schemas), findings)
//	rep.WriteText(os.Stdout)
//
// Rules may run concurrently; the reporter sorts findings before output so
// results are deterministic regardless of scheduling.
//
// # Related Packages
//
//   - pkg/protomodel: schema loading
//   - pkg/checker/rules: built-in rules
//   - pkg/report: output formatting and exit policy
package checker
