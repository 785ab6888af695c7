package checker

import (
	"github.com/platinummonkey/protocheck/pkg/protomodel"
)

// Severity indicates how serious a finding is
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Group names a family of related rules that can be selected together
type Group string

const (
	GroupLRO       Group = "lro"
	GroupRevisions Group = "revisions"
)

// InternalErrorRule is the reserved rule ID used when a rule panics during
// evaluation and the engine converts the fault into a warning finding.
const InternalErrorRule = "INTERNAL-ERROR"

// ParseErrorRule is the reserved rule ID for files that failed to load.
const ParseErrorRule = "PARSE-ERROR"

// Finding is a single guideline violation. Immutable once created.
type Finding struct {
	Rule     string             `json:"rule"`
	Group    Group              `json:"group,omitempty"`
	Severity Severity           `json:"severity"`
	Message  string             `json:"message"`
	File     string             `json:"file"`
	Pos      protomodel.Position `json:"position"`
}

// Rule is a pure, schema-read-only inspector. Check may be called
// concurrently with other rules against the same Schema and must not mutate
// it or depend on evaluation order.
type Rule interface {
	Name() string
	Group() Group
	Severity() Severity
	Description() string
	Check(schema *protomodel.Schema) []Finding
}
