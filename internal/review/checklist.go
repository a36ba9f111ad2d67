package review

import (
	"context"
	"strings"

	"github.com/justishika/clausecheck/internal/extract"
	"github.com/justishika/clausecheck/internal/llm"
	"github.com/justishika/clausecheck/internal/model"
)

// Degraded-path verdict texts.
const (
	reasonNotFound = "Clause not found."
	reasonSpecific = "Clause appears present and specific."
	reasonVague    = "Clause present but may be vague."
	fixClarify     = "Clarify specifics per checklist."
)

// Validator maps extracted clauses against a checklist, preferring
// model judgment and degrading to deterministic keyword rules when the
// model is unreachable.
type Validator struct {
	caller      *llm.Caller
	temperature float32
	maxTokens   int
}

// NewValidator creates a checklist validator over the given caller.
// A nil caller always uses the degraded path (offline mode).
func NewValidator(caller *llm.Caller, cfg model.LLMConfig) *Validator {
	return &Validator{
		caller:      caller,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Validate produces exactly one ValidationResult per checklist key.
//
// Primary path: one model call classifying every key at once. A key the
// response omits or garbles falls back to the keyword rules for that
// key alone. When the call itself fails, every key takes the degraded
// path; the second return reports that.
func (v *Validator) Validate(ctx context.Context, clauses model.ClauseSet, checklist *model.Checklist) (map[string]model.ValidationResult, bool) {
	if v.caller == nil {
		return v.validateOffline(clauses, checklist), true
	}

	comp, err := v.caller.Generate(ctx, llm.CompletionRequest{
		Prompt:       validationPrompt(clauses, checklist),
		SystemPrompt: SystemPrompt,
		MaxTokens:    v.maxTokens,
		Temperature:  v.temperature,
	})
	if err != nil {
		return v.validateOffline(clauses, checklist), true
	}

	parsed, ok := extract.ExtractObject(comp.Text)
	if !ok {
		// Malformed text is not a failure: recover per key
		return v.validateOffline(clauses, checklist), false
	}

	results := make(map[string]model.ValidationResult, checklist.Len())
	for _, item := range checklist.Items() {
		if verdict, found := verdictFor(parsed, item.Key); found {
			results[item.Key] = verdict
			continue
		}
		results[item.Key] = v.validateKey(item.Key, item.Rule, clauses)
	}
	return results, false
}

// validateOffline runs the keyword rules for every checklist key.
func (v *Validator) validateOffline(clauses model.ClauseSet, checklist *model.Checklist) map[string]model.ValidationResult {
	results := make(map[string]model.ValidationResult, checklist.Len())
	for _, item := range checklist.Items() {
		results[item.Key] = v.validateKey(item.Key, item.Rule, clauses)
	}
	return results
}

// validateKey is the deterministic degraded-path rule for one key.
func (v *Validator) validateKey(key, rule string, clauses model.ClauseSet) model.ValidationResult {
	clauseText := resolveClauseText(key, clauses)

	if strings.TrimSpace(clauseText) == "" {
		return model.ValidationResult{
			Status:       model.StatusMissing,
			Reason:       reasonNotFound,
			SuggestedFix: rule,
			Severity:     model.SeverityHigh,
		}
	}

	lower := strings.ToLower(clauseText)
	for _, kw := range specificityKeywordsV1 {
		if strings.Contains(lower, kw) {
			return model.ValidationResult{
				Status:   model.StatusCompliant,
				Reason:   reasonSpecific,
				Severity: model.SeverityLow,
			}
		}
	}

	return model.ValidationResult{
		Status:       model.StatusRisky,
		Reason:       reasonVague,
		SuggestedFix: fixClarify,
		Severity:     model.SeverityMedium,
	}
}

// resolveClauseText maps a checklist key to clause text by exact match
// or the documented alias table. Unresolved keys yield "", which the
// caller treats as clause-not-found.
func resolveClauseText(key string, clauses model.ClauseSet) string {
	if text, ok := clauses.Get(key); ok {
		return text
	}
	if canonical, ok := resolveAlias(key); ok {
		if text, ok := clauses.Get(canonical); ok {
			return text
		}
	}
	return ""
}

// resolveAlias finds the canonical clause key for a checklist spelling.
func resolveAlias(key string) (string, bool) {
	fold := foldLabel(key)
	for _, canonical := range model.ClauseKeys {
		if foldLabel(canonical) == fold {
			return canonical, true
		}
	}
	for alias, canonical := range clauseAliasesV1 {
		if foldLabel(alias) == fold {
			return canonical, true
		}
	}
	return "", false
}

// foldLabel collapses case and separators for alias comparison.
func foldLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '_', '-':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// verdictFor pulls one checklist key's verdict out of the parsed model
// response, tolerating alternate key spellings and enum casings.
// Returns false when the key is absent or its record is unusable.
func verdictFor(parsed map[string]any, key string) (model.ValidationResult, bool) {
	var record map[string]any
	fold := foldLabel(key)
	for k, val := range parsed {
		if foldLabel(k) == fold {
			if m, ok := val.(map[string]any); ok {
				record = m
			}
			break
		}
	}
	if record == nil {
		return model.ValidationResult{}, false
	}

	status := model.Status(strings.ToUpper(strings.TrimSpace(field(record, "status"))))
	if !model.ValidStatus(status) {
		return model.ValidationResult{}, false
	}

	severity := model.Severity(strings.ToLower(strings.TrimSpace(field(record, "severity"))))
	if !model.ValidSeverity(severity) {
		severity = defaultSeverity(status)
	}

	return model.ValidationResult{
		Status:       status,
		Reason:       field(record, "reason"),
		SuggestedFix: field(record, "suggested_fix"),
		Severity:     severity,
	}, true
}

// field reads a record field by folded name ("suggested_fix" matches
// "suggestedFix" and "Suggested Fix").
func field(record map[string]any, name string) string {
	fold := foldLabel(name)
	for k, v := range record {
		if foldLabel(k) == fold {
			return extract.Stringify(v)
		}
	}
	return ""
}

// defaultSeverity backfills a verdict whose severity the model left out
// or mangled.
func defaultSeverity(status model.Status) model.Severity {
	switch status {
	case model.StatusMissing:
		return model.SeverityHigh
	case model.StatusRisky:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}
