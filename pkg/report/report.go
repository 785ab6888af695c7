package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/platinummonkey/protocheck/pkg/checker"
)

// Summary provides an overview of a check run
type Summary struct {
	Files    int `json:"files"`
	Findings int `json:"findings"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Report aggregates findings into deterministic, diff-friendly output.
// Findings are sorted at construction by (file, line, column, rule ID) so
// two runs over the same input produce byte-identical output regardless of
// rule evaluation order.
type Report struct {
	Findings []checker.Finding
	Summary  Summary
}

// New builds a report over the given findings. The slice is copied and
// sorted; callers may keep appending to theirs.
func New(files int, findings []checker.Finding) *Report {
	sorted := make([]checker.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Pos.Line != b.Pos.Line {
			return a.Pos.Line < b.Pos.Line
		}
		if a.Pos.Column != b.Pos.Column {
			return a.Pos.Column < b.Pos.Column
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})

	summary := Summary{Files: files, Findings: len(sorted)}
	for _, f := range sorted {
		switch f.Severity {
		case checker.SeverityError:
			summary.Errors++
		case checker.SeverityWarning:
			summary.Warnings++
		case checker.SeverityInfo:
			summary.Infos++
		}
	}

	return &Report{Findings: sorted, Summary: summary}
}

// HasErrors reports whether any error-severity finding is present
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}

// ExitCode returns the process exit code for this report. Warnings never
// affect the exit code unless failOnWarning is set.
func (r *Report) ExitCode(failOnWarning bool) int {
	if r.Summary.Errors > 0 {
		return 1
	}
	if failOnWarning && r.Summary.Warnings > 0 {
		return 1
	}
	return 0
}

// WriteText writes one line per finding: severity: file:line: rule-id: message
func (r *Report) WriteText(w io.Writer) error {
	for _, f := range r.Findings {
		if _, err := fmt.Fprintf(w, "%s: %s:%d: %s: %s\n",
			f.Severity, f.File, f.Pos.Line, f.Rule, f.Message); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary writes a human-readable summary block
func (r *Report) WriteSummary(w io.Writer) error {
	_, err := fmt.Fprintf(w, "\nSummary:\n  Files:    %d\n  Findings: %d\n  Errors:   %d\n  Warnings: %d\n  Infos:    %d\n",
		r.Summary.Files, r.Summary.Findings, r.Summary.Errors, r.Summary.Warnings, r.Summary.Infos)
	return err
}

// WriteJSON writes the findings as a JSON array
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Findings)
}

// WriteGitHub writes findings as GitHub Actions annotations
func (r *Report) WriteGitHub(w io.Writer) error {
	for _, f := range r.Findings {
		level := "error"
		switch f.Severity {
		case checker.SeverityWarning:
			level = "warning"
		case checker.SeverityInfo:
			level = "notice"
		}
		if _, err := fmt.Fprintf(w, "::%s file=%s,line=%d,col=%d::[%s] %s\n",
			level, f.File, f.Pos.Line, f.Pos.Column, f.Rule, f.Message); err != nil {
			return err
		}
	}
	return nil
}
