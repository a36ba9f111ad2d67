package review

// Keyword sets behind the deterministic degraded path. Named and
// versioned so fallback verdicts stay stable and testable; bump the
// version when changing a set.

// specificityKeywordsV1 marks a clause as concrete rather than vague:
// amount/currency markers, time-period markers, and notice/termination
// markers.
var specificityKeywordsV1 = []string{
	"limit", "cap", "$", "days", "notice",
	"terminate", "termination", "invoice", "due",
}

// clauseAliasesV1 maps checklist spellings to canonical clause names.
// Matching is case- and separator-insensitive. An unresolved key is
// treated as "clause not found", never guessed.
var clauseAliasesV1 = map[string]string{
	"Payment Terms":   "PaymentTerms",
	"payment_terms":   "PaymentTerms",
	"Confidentiality": "Confidentiality",
}

// digestTopicsV1 labels paragraphs in the offline summary digest.
// Ordered so the label picks the first matching topic.
var digestTopicsV1 = []struct {
	Label    string
	Keywords []string
}{
	{"Liability", []string{"liability", "liable", "damages", "indemn"}},
	{"Termination", []string{"termination", "terminate", "expiry", "expiration"}},
	{"Payment", []string{"payment", "invoice", "fee", "compensation"}},
	{"Confidentiality", []string{"confidential", "non-disclosure", "nda"}},
	{"Term", []string{"effective", "commence", "duration"}},
}
