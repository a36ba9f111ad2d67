package model

import "time"

// Report is the complete review output for one contract.
// Assembled once at the end of a run and never mutated afterward.
type Report struct {
	Summary    string                      `json:"summary"`             // Model (or fallback) summary of the contract
	Clauses    ClauseSet                   `json:"clauses"`             // Extracted clause texts
	Validation map[string]ValidationResult `json:"validation"`          // One entry per checklist key
	Checklist  []string                    `json:"checklist,omitempty"` // Checklist keys in input order
	Followups  FollowupBundle              `json:"followups"`           // Follow-up questions and rewrites
	Timestamp  int64                       `json:"timestamp"`           // Unix seconds at assembly time
	Source     SourceMeta                  `json:"source"`              // Input document metadata
	Fallbacks  []string                    `json:"fallbacks,omitempty"` // "generated via fallback" notices per step
}

// SourceMeta records where the reviewed text came from.
type SourceMeta struct {
	Path     string `json:"path"`
	IsPDF    bool   `json:"is_pdf"`
	Chars    int    `json:"chars"`              // Length of the extracted text
	Provider string `json:"provider,omitempty"` // LLM provider used, if any
	Model    string `json:"model,omitempty"`    // Model that produced the primary results
}

// NewReport stamps a report at assembly time.
func NewReport() *Report {
	return &Report{
		Validation: make(map[string]ValidationResult),
		Timestamp:  time.Now().Unix(),
	}
}

// AddFallbackNote records that a step degraded to offline behavior.
func (r *Report) AddFallbackNote(note string) {
	r.Fallbacks = append(r.Fallbacks, note)
}

// ClauseSet holds the extracted text for the four fixed clause names.
// Fields are never absent, only empty.
type ClauseSet struct {
	Liability       string `json:"Liability"`
	Termination     string `json:"Termination"`
	PaymentTerms    string `json:"PaymentTerms"`
	Confidentiality string `json:"Confidentiality"`
}

// ClauseKeys is the canonical, ordered set of clause names.
var ClauseKeys = []string{"Liability", "Termination", "PaymentTerms", "Confidentiality"}

// ClauseSetFromMap builds a ClauseSet from a canonical-key map.
// Unknown keys are ignored; missing keys become empty strings.
func ClauseSetFromMap(m map[string]string) ClauseSet {
	return ClauseSet{
		Liability:       m["Liability"],
		Termination:     m["Termination"],
		PaymentTerms:    m["PaymentTerms"],
		Confidentiality: m["Confidentiality"],
	}
}

// Get returns the clause text for a canonical key, and whether the key is known.
func (c ClauseSet) Get(key string) (string, bool) {
	switch key {
	case "Liability":
		return c.Liability, true
	case "Termination":
		return c.Termination, true
	case "PaymentTerms":
		return c.PaymentTerms, true
	case "Confidentiality":
		return c.Confidentiality, true
	default:
		return "", false
	}
}

// Map returns the clause set as a canonical-key map.
func (c ClauseSet) Map() map[string]string {
	return map[string]string{
		"Liability":       c.Liability,
		"Termination":     c.Termination,
		"PaymentTerms":    c.PaymentTerms,
		"Confidentiality": c.Confidentiality,
	}
}

// Status is the verdict for one checklist item.
type Status string

const (
	StatusCompliant Status = "COMPLIANT"
	StatusMissing   Status = "MISSING"
	StatusRisky     Status = "RISKY"
)

// ValidStatus reports whether s is one of the closed status values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusCompliant, StatusMissing, StatusRisky:
		return true
	default:
		return false
	}
}

// Severity grades how urgent a validation finding is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ValidSeverity reports whether s is one of the closed severity values.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// ValidationResult is the per-checklist-item verdict.
type ValidationResult struct {
	Status       Status   `json:"status"`
	Reason       string   `json:"reason"`
	SuggestedFix string   `json:"suggested_fix"`
	Severity     Severity `json:"severity"`
}

// FollowupBundle carries follow-up questions and suggested rewrites.
// When the model reply could not be parsed into lists, Raw holds the
// reply text verbatim and the lists are empty.
type FollowupBundle struct {
	FollowUpQuestions []string `json:"follow_up_questions"`
	SuggestedRewrites []string `json:"suggested_rewrites"`
	Raw               string   `json:"raw,omitempty"`
}

// Bounds on followup list lengths.
const (
	MaxFollowUpQuestions = 5
	MaxSuggestedRewrites = 3
)
