package review

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/justishika/clausecheck/internal/model"
)

// Renderer writes reports to disk and prints the stdout digest.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes a human-readable report.
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	b.WriteString("# Contract Review Report\n\n")
	fmt.Fprintf(&b, "**Source:** %s\n\n", report.Source.Path)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", time.Unix(report.Timestamp, 0).UTC().Format(time.RFC3339))

	if len(report.Fallbacks) > 0 {
		b.WriteString("> Generated via fallback:\n")
		for _, note := range report.Fallbacks {
			fmt.Fprintf(&b, "> - %s\n", note)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Summary\n\n")
	b.WriteString(report.Summary)
	b.WriteString("\n\n")

	b.WriteString("## Extracted Clauses\n\n")
	clauseMap := report.Clauses.Map()
	for _, key := range model.ClauseKeys {
		text := clauseMap[key]
		if strings.TrimSpace(text) == "" {
			text = "_(not found)_"
		}
		fmt.Fprintf(&b, "### %s\n\n%s\n\n", key, text)
	}

	b.WriteString("## Checklist Validation\n\n")
	b.WriteString("| Requirement | Status | Severity | Reason | Suggested Fix |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, key := range validationOrder(report) {
		v := report.Validation[key]
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			key, v.Status, v.Severity, mdCell(v.Reason), mdCell(v.SuggestedFix))
	}
	b.WriteString("\n")

	b.WriteString("## Follow-ups\n\n")
	if report.Followups.Raw != "" {
		b.WriteString(report.Followups.Raw)
		b.WriteString("\n")
	} else {
		if len(report.Followups.FollowUpQuestions) > 0 {
			b.WriteString("**Questions for the counterparty:**\n\n")
			for _, q := range report.Followups.FollowUpQuestions {
				fmt.Fprintf(&b, "1. %s\n", q)
			}
			b.WriteString("\n")
		}
		if len(report.Followups.SuggestedRewrites) > 0 {
			b.WriteString("**Suggested rewrites:**\n\n")
			for _, s := range report.Followups.SuggestedRewrites {
				fmt.Fprintf(&b, "- %s\n", s)
			}
			b.WriteString("\n")
		}
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by clausecheck. Prototype tooling, not legal advice._\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderDigest prints the short human-readable digest.
func (r *Renderer) RenderDigest(w io.Writer, report *model.Report) {
	summary := report.Summary
	if len(summary) > 2000 {
		summary = summary[:2000]
	}
	fmt.Fprintf(w, "Summary:\n%s\n\n", summary)

	fmt.Fprintln(w, "Validation (short):")
	for _, key := range validationOrder(report) {
		v := report.Validation[key]
		fmt.Fprintf(w, "- %s: %s (%s) %s\n", key, v.Status, v.Severity, v.Reason)
	}

	if len(report.Fallbacks) > 0 {
		fmt.Fprintln(w)
		for _, note := range report.Fallbacks {
			fmt.Fprintf(w, "Note: %s\n", note)
		}
	}
}

// validationOrder returns validation keys in the checklist's input
// order. Reports without recorded checklist order fall back to sorted
// keys so rendering stays deterministic.
func validationOrder(report *model.Report) []string {
	if len(report.Checklist) > 0 {
		keys := make([]string, 0, len(report.Checklist))
		for _, k := range report.Checklist {
			if _, ok := report.Validation[k]; ok {
				keys = append(keys, k)
			}
		}
		return keys
	}

	keys := make([]string, 0, len(report.Validation))
	for k := range report.Validation {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// mdCell keeps free text from breaking the markdown table.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
