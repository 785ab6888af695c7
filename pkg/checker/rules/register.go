package rules

import (
	"github.com/platinummonkey/protocheck/pkg/checker"
)

// Registry interface for registering rules
type Registry interface {
	Register(rule checker.Rule)
}

// DefaultRules returns every built-in rule
func DefaultRules() []checker.Rule {
	return []checker.Rule{
		// Long-running operation rules
		NewResponseTypeRule(),
		NewNotStreamingRule(),
		NewMetadataSuffixRule(),

		// Revision history rules
		NewFieldsPresentRule(),
		NewFieldsOutputOnlyRule(),
		NewDeleteRequiresIDRule(),
		NewRollbackRevisionIDRule(),
		NewListRevisionsResponseRule(),
	}
}

// RegisterDefaultRules registers all built-in rules
func RegisterDefaultRules(registry Registry) {
	for _, rule := range DefaultRules() {
		registry.Register(rule)
	}
}
