package checker

import (
	"sort"
	"strings"
)

// Registry manages available rules
type Registry struct {
	rules map[string]Rule
}

// NewRegistry creates an empty rule registry
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule to the registry. Later registrations with the same
// name replace earlier ones.
func (r *Registry) Register(rule Rule) {
	r.rules[rule.Name()] = rule
}

// Get retrieves a rule by name
func (r *Registry) Get(name string) (Rule, bool) {
	rule, ok := r.rules[name]
	return rule, ok
}

// All returns every registered rule ordered by name
func (r *Registry) All() []Rule {
	rules := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Name() < rules[j].Name() })
	return rules
}

// ByGroup returns the rules in a group, ordered by name
func (r *Registry) ByGroup(group Group) []Rule {
	var rules []Rule
	for _, rule := range r.All() {
		if rule.Group() == group {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Select returns the rules matching the given selectors, each of which is a
// rule ID or a group name. An empty selector list selects every rule.
// Matching is case-insensitive so CLI input like "lro-response-type" works.
func (r *Registry) Select(selectors []string) []Rule {
	if len(selectors) == 0 {
		return r.All()
	}

	want := make(map[string]bool, len(selectors))
	for _, s := range selectors {
		want[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var rules []Rule
	for _, rule := range r.All() {
		if want[strings.ToLower(rule.Name())] || want[strings.ToLower(string(rule.Group()))] {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Enabled applies the config's rule selection: the enabled list narrows the
// set (IDs or groups), then disabled rules are removed.
func (r *Registry) Enabled(config *Config) []Rule {
	if config == nil {
		return r.All()
	}

	selected := r.Select(config.Rules.Enabled)
	if len(config.Rules.Disabled) == 0 {
		return selected
	}

	disabled := make(map[string]bool, len(config.Rules.Disabled))
	for _, name := range config.Rules.Disabled {
		disabled[strings.ToLower(strings.TrimSpace(name))] = true
	}

	var rules []Rule
	for _, rule := range selected {
		if disabled[strings.ToLower(rule.Name())] || disabled[strings.ToLower(string(rule.Group()))] {
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}
