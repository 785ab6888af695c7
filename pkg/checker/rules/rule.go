package rules

import (
	"github.com/platinummonkey/protocheck/pkg/checker"
	"github.com/platinummonkey/protocheck/pkg/protomodel"
)

// BaseRule provides common functionality for rules
type BaseRule struct {
	RuleName        string
	RuleGroup       checker.Group
	RuleSeverity    checker.Severity
	RuleDescription string
}

func (r *BaseRule) Name() string               { return r.RuleName }
func (r *BaseRule) Group() checker.Group       { return r.RuleGroup }
func (r *BaseRule) Severity() checker.Severity { return r.RuleSeverity }
func (r *BaseRule) Description() string        { return r.RuleDescription }

// finding builds a Finding carrying the rule's identity. The engine fills in
// the file path.
func (r *BaseRule) finding(pos protomodel.Position, message string) checker.Finding {
	return checker.Finding{
		Rule:     r.RuleName,
		Group:    r.RuleGroup,
		Severity: r.RuleSeverity,
		Message:  message,
		Pos:      pos,
	}
}
