package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/protocheck/pkg/protomodel"
)

// mockRule is a configurable rule for registry and engine tests
type mockRule struct {
	name     string
	group    Group
	severity Severity
	check    func(*protomodel.Schema) []Finding
}

func (m *mockRule) Name() string        { return m.name }
func (m *mockRule) Group() Group        { return m.group }
func (m *mockRule) Severity() Severity  { return m.severity }
func (m *mockRule) Description() string { return "mock rule " + m.name }

func (m *mockRule) Check(schema *protomodel.Schema) []Finding {
	if m.check == nil {
		return nil
	}
	return m.check(schema)
}

func newMockRule(name string, group Group) *mockRule {
	return &mockRule{name: name, group: group, severity: SeverityError}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newMockRule("RULE-B", GroupLRO))
	registry.Register(newMockRule("RULE-A", GroupRevisions))

	rule, ok := registry.Get("RULE-A")
	require.True(t, ok)
	assert.Equal(t, "RULE-A", rule.Name())

	_, ok = registry.Get("missing")
	assert.False(t, ok)

	all := registry.All()
	require.Len(t, all, 2)
	// All is ordered by name for deterministic listings.
	assert.Equal(t, "RULE-A", all[0].Name())
	assert.Equal(t, "RULE-B", all[1].Name())
}

func TestRegistryByGroup(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newMockRule("LRO-ONE", GroupLRO))
	registry.Register(newMockRule("LRO-TWO", GroupLRO))
	registry.Register(newMockRule("REV-ONE", GroupRevisions))

	lro := registry.ByGroup(GroupLRO)
	require.Len(t, lro, 2)
	assert.Equal(t, "LRO-ONE", lro[0].Name())

	assert.Len(t, registry.ByGroup(GroupRevisions), 1)
}

func TestRegistrySelect(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newMockRule("LRO-ONE", GroupLRO))
	registry.Register(newMockRule("LRO-TWO", GroupLRO))
	registry.Register(newMockRule("REV-ONE", GroupRevisions))

	tests := []struct {
		name      string
		selectors []string
		want      []string
	}{
		{"empty selects all", nil, []string{"LRO-ONE", "LRO-TWO", "REV-ONE"}},
		{"by rule id", []string{"LRO-ONE"}, []string{"LRO-ONE"}},
		{"by group", []string{"revisions"}, []string{"REV-ONE"}},
		{"case insensitive", []string{"lro-two"}, []string{"LRO-TWO"}},
		{"mixed", []string{"revisions", "LRO-ONE"}, []string{"LRO-ONE", "REV-ONE"}},
		{"no match", []string{"nothing"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, rule := range registry.Select(tt.selectors) {
				got = append(got, rule.Name())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistryEnabled(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newMockRule("LRO-ONE", GroupLRO))
	registry.Register(newMockRule("LRO-TWO", GroupLRO))
	registry.Register(newMockRule("REV-ONE", GroupRevisions))

	config := DefaultConfig()
	assert.Len(t, registry.Enabled(config), 3)

	config.Rules.Enabled = []string{"lro"}
	config.Rules.Disabled = []string{"LRO-TWO"}
	enabled := registry.Enabled(config)
	require.Len(t, enabled, 1)
	assert.Equal(t, "LRO-ONE", enabled[0].Name())

	// Disabling a whole group wins over enabling it.
	config.Rules.Enabled = nil
	config.Rules.Disabled = []string{"lro"}
	enabled = registry.Enabled(config)
	require.Len(t, enabled, 1)
	assert.Equal(t, "REV-ONE", enabled[0].Name())
}
