package rules

import (
	"strings"

	"github.com/platinummonkey/protocheck/pkg/checker"
	"github.com/platinummonkey/protocheck/pkg/protomodel"
)

// ResponseTypeRule checks that long-running methods declare operation_info
// with non-empty response_type and metadata_type.
type ResponseTypeRule struct {
	BaseRule
}

// NewResponseTypeRule creates the LRO-RESPONSE-TYPE rule
func NewResponseTypeRule() *ResponseTypeRule {
	return &ResponseTypeRule{
		BaseRule: BaseRule{
			RuleName:        "LRO-RESPONSE-TYPE",
			RuleGroup:       checker.GroupLRO,
			RuleSeverity:    checker.SeverityError,
			RuleDescription: "Methods returning google.longrunning.Operation must declare operation_info with response_type and metadata_type",
		},
	}
}

// Check fires exactly once per offending method.
func (r *ResponseTypeRule) Check(schema *protomodel.Schema) []checker.Finding {
	var findings []checker.Finding

	schema.WalkMethods(func(svc *protomodel.Service, m *protomodel.Method) {
		if !m.ReturnsOperation() {
			return
		}

		switch {
		case m.OperationInfo == nil:
			findings = append(findings, r.finding(m.Pos,
				"method "+m.Name+" returns google.longrunning.Operation but declares no operation_info"))
		case m.OperationInfo.ResponseType == "" && m.OperationInfo.MetadataType == "":
			findings = append(findings, r.finding(m.Pos,
				"method "+m.Name+" has operation_info with empty response_type and metadata_type"))
		case m.OperationInfo.ResponseType == "":
			findings = append(findings, r.finding(m.Pos,
				"method "+m.Name+" has operation_info with empty response_type"))
		case m.OperationInfo.MetadataType == "":
			findings = append(findings, r.finding(m.Pos,
				"method "+m.Name+" has operation_info with empty metadata_type"))
		}
	})

	return findings
}

// NotStreamingRule checks that long-running methods are unary.
type NotStreamingRule struct {
	BaseRule
}

// NewNotStreamingRule creates the LRO-NOT-STREAMING rule
func NewNotStreamingRule() *NotStreamingRule {
	return &NotStreamingRule{
		BaseRule: BaseRule{
			RuleName:        "LRO-NOT-STREAMING",
			RuleGroup:       checker.GroupLRO,
			RuleSeverity:    checker.SeverityError,
			RuleDescription: "Long-running methods must not stream in either direction",
		},
	}
}

// Check flags methods that return Operation or carry operation_info while
// streaming.
func (r *NotStreamingRule) Check(schema *protomodel.Schema) []checker.Finding {
	var findings []checker.Finding

	schema.WalkMethods(func(svc *protomodel.Service, m *protomodel.Method) {
		if !m.ReturnsOperation() && m.OperationInfo == nil {
			return
		}
		if m.ServerStreaming {
			findings = append(findings, r.finding(m.Pos,
				"long-running method "+m.Name+" must not have a streaming response"))
		}
		if m.ClientStreaming {
			findings = append(findings, r.finding(m.Pos,
				"long-running method "+m.Name+" must not have a streaming request"))
		}
	})

	return findings
}

// MetadataSuffixRule suggests the conventional Metadata suffix for
// operation metadata types.
type MetadataSuffixRule struct {
	BaseRule
}

// NewMetadataSuffixRule creates the LRO-METADATA-SUFFIX rule
func NewMetadataSuffixRule() *MetadataSuffixRule {
	return &MetadataSuffixRule{
		BaseRule: BaseRule{
			RuleName:        "LRO-METADATA-SUFFIX",
			RuleGroup:       checker.GroupLRO,
			RuleSeverity:    checker.SeverityInfo,
			RuleDescription: "Operation metadata types should end in \"Metadata\"",
		},
	}
}

// Check inspects operation_info metadata types.
func (r *MetadataSuffixRule) Check(schema *protomodel.Schema) []checker.Finding {
	var findings []checker.Finding

	schema.WalkMethods(func(svc *protomodel.Service, m *protomodel.Method) {
		if m.OperationInfo == nil || m.OperationInfo.MetadataType == "" {
			return
		}
		if !strings.HasSuffix(m.OperationInfo.MetadataType, "Metadata") {
			findings = append(findings, r.finding(m.Pos,
				"metadata type "+m.OperationInfo.MetadataType+" for method "+m.Name+" should end in \"Metadata\""))
		}
	})

	return findings
}
