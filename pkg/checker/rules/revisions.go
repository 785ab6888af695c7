package rules

import (
	"regexp"
	"strings"

	"github.com/platinummonkey/protocheck/pkg/checker"
	"github.com/platinummonkey/protocheck/pkg/protomodel"
)

// revisionMarkers are the fields that make a message a revisioned resource.
// A message carrying either one is treated as revisioned and must satisfy
// the revision rules.
var revisionMarkers = []string{"revision_id", "revision_create_time"}

func isRevisioned(msg *protomodel.Message) bool {
	for _, name := range revisionMarkers {
		if msg.Field(name) != nil {
			return true
		}
	}
	return false
}

// FieldsPresentRule checks that revisioned resources carry both revision
// marker fields with the expected types.
type FieldsPresentRule struct {
	BaseRule
}

// NewFieldsPresentRule creates the REVISION-FIELDS-PRESENT rule
func NewFieldsPresentRule() *FieldsPresentRule {
	return &FieldsPresentRule{
		BaseRule: BaseRule{
			RuleName:        "REVISION-FIELDS-PRESENT",
			RuleGroup:       checker.GroupRevisions,
			RuleSeverity:    checker.SeverityError,
			RuleDescription: "Revisioned resources must have revision_id (string) and revision_create_time (google.protobuf.Timestamp)",
		},
	}
}

// Check fires at most once per revisioned message, listing every problem.
func (r *FieldsPresentRule) Check(schema *protomodel.Schema) []checker.Finding {
	var findings []checker.Finding

	schema.WalkMessages(func(msg *protomodel.Message) {
		if !isRevisioned(msg) {
			return
		}

		var problems []string
		if f := msg.Field("revision_id"); f == nil {
			problems = append(problems, "missing revision_id")
		} else if f.Type != "string" {
			problems = append(problems, "revision_id must be a string, got "+f.Type)
		}
		if f := msg.Field("revision_create_time"); f == nil {
			problems = append(problems, "missing revision_create_time")
		} else if f.Type != protomodel.TimestampType {
			problems = append(problems, "revision_create_time must be a google.protobuf.Timestamp, got "+f.Type)
		}

		if len(problems) > 0 {
			findings = append(findings, r.finding(msg.Pos,
				"revisioned message "+msg.Name+": "+strings.Join(problems, "; ")))
		}
	})

	return findings
}

// FieldsOutputOnlyRule checks that revision marker fields are OUTPUT_ONLY,
// since revision identity is assigned by the server.
type FieldsOutputOnlyRule struct {
	BaseRule
}

// NewFieldsOutputOnlyRule creates the REVISION-FIELDS-OUTPUT-ONLY rule
func NewFieldsOutputOnlyRule() *FieldsOutputOnlyRule {
	return &FieldsOutputOnlyRule{
		BaseRule: BaseRule{
			RuleName:        "REVISION-FIELDS-OUTPUT-ONLY",
			RuleGroup:       checker.GroupRevisions,
			RuleSeverity:    checker.SeverityWarning,
			RuleDescription: "Revision marker fields should be annotated OUTPUT_ONLY",
		},
	}
}

// Check inspects revision marker fields of revisioned messages.
func (r *FieldsOutputOnlyRule) Check(schema *protomodel.Schema) []checker.Finding {
	var findings []checker.Finding

	schema.WalkMessages(func(msg *protomodel.Message) {
		if !isRevisioned(msg) {
			return
		}
		for _, name := range revisionMarkers {
			f := msg.Field(name)
			if f == nil || f.HasBehavior("OUTPUT_ONLY") {
				continue
			}
			findings = append(findings, r.finding(f.Pos,
				"field "+msg.Name+"."+f.Name+" should be annotated OUTPUT_ONLY"))
		}
	})

	return findings
}

var (
	deleteRevisionRe = regexp.MustCompile(`^Delete[A-Za-z0-9]*Revision$`)
	rollbackRe       = regexp.MustCompile(`^Rollback[A-Za-z0-9]*$`)
	listRevisionsRe  = regexp.MustCompile(`^List[A-Za-z0-9]*Revisions$`)
)

// requestMessage resolves a method's request message within the schema.
func requestMessage(schema *protomodel.Schema, m *protomodel.Method) *protomodel.Message {
	var found *protomodel.Message
	schema.WalkMessages(func(msg *protomodel.Message) {
		if msg.FullName == m.InputType {
			found = msg
		}
	})
	return found
}

// responseMessage resolves a method's response message within the schema.
func responseMessage(schema *protomodel.Schema, m *protomodel.Method) *protomodel.Message {
	var found *protomodel.Message
	schema.WalkMessages(func(msg *protomodel.Message) {
		if msg.FullName == m.OutputType {
			found = msg
		}
	})
	return found
}

// DeleteRequiresIDRule checks delete-revision requests. The "latest" default
// cannot be verified statically, so this is only ever a warning.
type DeleteRequiresIDRule struct {
	BaseRule
}

// NewDeleteRequiresIDRule creates the REVISION-DELETE-REQUIRES-ID rule
func NewDeleteRequiresIDRule() *DeleteRequiresIDRule {
	return &DeleteRequiresIDRule{
		BaseRule: BaseRule{
			RuleName:        "REVISION-DELETE-REQUIRES-ID",
			RuleGroup:       checker.GroupRevisions,
			RuleSeverity:    checker.SeverityWarning,
			RuleDescription: "Delete-revision requests must name an explicit revision via a REQUIRED name field",
		},
	}
}

// Check inspects Delete*Revision request messages.
func (r *DeleteRequiresIDRule) Check(schema *protomodel.Schema) []checker.Finding {
	var findings []checker.Finding

	schema.WalkMethods(func(svc *protomodel.Service, m *protomodel.Method) {
		if !deleteRevisionRe.MatchString(m.Name) {
			return
		}
		req := requestMessage(schema, m)
		if req == nil {
			return
		}
		f := req.Field("name")
		switch {
		case f == nil:
			findings = append(findings, r.finding(req.Pos,
				"request for "+m.Name+" has no name field to identify the revision"))
		case !f.HasBehavior("REQUIRED"):
			findings = append(findings, r.finding(f.Pos,
				"field "+req.Name+".name should be annotated REQUIRED so callers cannot delete the latest revision by default"))
		}
	})

	return findings
}

// RollbackRevisionIDRule checks that rollback requests pin the target
// revision explicitly.
type RollbackRevisionIDRule struct {
	BaseRule
}

// NewRollbackRevisionIDRule creates the REVISION-ROLLBACK-REVISION-ID rule
func NewRollbackRevisionIDRule() *RollbackRevisionIDRule {
	return &RollbackRevisionIDRule{
		BaseRule: BaseRule{
			RuleName:        "REVISION-ROLLBACK-REVISION-ID",
			RuleGroup:       checker.GroupRevisions,
			RuleSeverity:    checker.SeverityError,
			RuleDescription: "Rollback requests must carry a REQUIRED revision_id string field",
		},
	}
}

// Check inspects Rollback* request messages.
func (r *RollbackRevisionIDRule) Check(schema *protomodel.Schema) []checker.Finding {
	var findings []checker.Finding

	schema.WalkMethods(func(svc *protomodel.Service, m *protomodel.Method) {
		if !rollbackRe.MatchString(m.Name) {
			return
		}
		req := requestMessage(schema, m)
		if req == nil {
			return
		}
		f := req.Field("revision_id")
		switch {
		case f == nil:
			findings = append(findings, r.finding(req.Pos,
				"request for "+m.Name+" must have a revision_id field"))
		case f.Type != "string":
			findings = append(findings, r.finding(f.Pos,
				"field "+req.Name+".revision_id must be a string, got "+f.Type))
		case !f.HasBehavior("REQUIRED"):
			findings = append(findings, r.finding(f.Pos,
				"field "+req.Name+".revision_id must be annotated REQUIRED"))
		}
	})

	return findings
}

// ListRevisionsResponseRule checks that revision listings paginate.
type ListRevisionsResponseRule struct {
	BaseRule
}

// NewListRevisionsResponseRule creates the REVISION-LIST-RESPONSE rule
func NewListRevisionsResponseRule() *ListRevisionsResponseRule {
	return &ListRevisionsResponseRule{
		BaseRule: BaseRule{
			RuleName:        "REVISION-LIST-RESPONSE",
			RuleGroup:       checker.GroupRevisions,
			RuleSeverity:    checker.SeverityWarning,
			RuleDescription: "List*Revisions responses should be paginated: a repeated resource field plus next_page_token",
		},
	}
}

// Check inspects List*Revisions response messages.
func (r *ListRevisionsResponseRule) Check(schema *protomodel.Schema) []checker.Finding {
	var findings []checker.Finding

	schema.WalkMethods(func(svc *protomodel.Service, m *protomodel.Method) {
		if !listRevisionsRe.MatchString(m.Name) {
			return
		}
		resp := responseMessage(schema, m)
		if resp == nil {
			return
		}

		hasRepeated := false
		for _, f := range resp.Fields {
			if f.Repeated && !strings.HasPrefix(f.Type, "map<") {
				hasRepeated = true
				break
			}
		}

		var problems []string
		if !hasRepeated {
			problems = append(problems, "no repeated resource field")
		}
		if f := resp.Field("next_page_token"); f == nil || f.Type != "string" {
			problems = append(problems, "missing string next_page_token")
		}

		if len(problems) > 0 {
			findings = append(findings, r.finding(resp.Pos,
				"response for "+m.Name+" is not paginated: "+strings.Join(problems, "; ")))
		}
	})

	return findings
}
