package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

var contractShape = Shape{
	Name: "clauses",
	Keys: []string{"Liability", "Termination", "PaymentTerms", "Confidentiality"},
	Aliases: map[string]string{
		"Payment Terms": "PaymentTerms",
		"payment_terms": "PaymentTerms",
	},
}

func TestExtract_ValidJSON(t *testing.T) {
	raw := `{"Liability": "Limited to $10,000.", "Termination": "30 days notice.", "PaymentTerms": "Net 30.", "Confidentiality": "5 years."}`

	result := Extract(raw, contractShape)

	if result["Liability"] != "Limited to $10,000." {
		t.Errorf("Expected liability clause, got '%s'", result["Liability"])
	}
	if result["Termination"] != "30 days notice." {
		t.Errorf("Expected termination clause, got '%s'", result["Termination"])
	}
}

func TestExtract_JSONEmbeddedInProse(t *testing.T) {
	raw := `Sure! Here is the extraction you asked for:

{"Liability": "Capped at fees paid.", "Termination": "", "PaymentTerms": "Net 45", "Confidentiality": "Mutual NDA"}

Let me know if you need anything else.`

	result := Extract(raw, contractShape)

	if result["Liability"] != "Capped at fees paid." {
		t.Errorf("Expected salvaged JSON value, got '%s'", result["Liability"])
	}
	if result["PaymentTerms"] != "Net 45" {
		t.Errorf("Expected salvaged JSON value, got '%s'", result["PaymentTerms"])
	}
}

func TestExtract_MalformedFallsBackToHeuristic(t *testing.T) {
	// Truncated JSON: brace salvage fails, whole-text parse fails
	raw := `{"Liability": "Limited to direct damages only, capped at the total fees paid`

	result := Extract(raw, contractShape)

	// Heuristic finds the Liability label and captures a window from it
	if !strings.Contains(result["Liability"], "Liability") {
		t.Errorf("Expected heuristic window starting at label, got '%s'", result["Liability"])
	}
	// Labels absent from the text yield empty values, not missing keys
	if _, ok := result["Termination"]; !ok {
		t.Error("Expected Termination key to be present")
	}
	if result["Termination"] != "" {
		t.Errorf("Expected empty Termination, got '%s'", result["Termination"])
	}
}

func TestExtract_TotalOnAnyInput(t *testing.T) {
	inputs := []string{
		"",
		"complete garbage with no structure at all",
		"{not json at all}",
		"}{",
		`[1, 2, 3]`,
		strings.Repeat("x", 10000),
	}

	for _, raw := range inputs {
		result := Extract(raw, contractShape)
		for _, key := range contractShape.Keys {
			if _, ok := result[key]; !ok {
				t.Errorf("Input %q: missing required key %s", truncateForLog(raw), key)
			}
		}
	}
}

func TestExtract_TotalOnCaseFoldGrowth(t *testing.T) {
	// U+023A lowercases to U+2C65, growing from 2 to 3 UTF-8 bytes, so
	// match positions in the lowercased text overrun the original.
	raw := strings.Repeat("Ⱥ", 1000) + " Liability: capped at fees paid"

	result := Extract(raw, contractShape)

	for _, key := range contractShape.Keys {
		if _, ok := result[key]; !ok {
			t.Errorf("missing required key %s", key)
		}
	}
	if !strings.Contains(strings.ToLower(result["Liability"]), "liability") {
		t.Errorf("Expected heuristic window at the label, got '%s'", result["Liability"])
	}
}

func TestExtract_HeuristicWindowRuneBoundary(t *testing.T) {
	// The window cap must not cut a multibyte rune in half
	raw := "Liability: " + strings.Repeat("é", 600)

	result := Extract(raw, contractShape)

	if !utf8.ValidString(result["Liability"]) {
		t.Errorf("Expected valid UTF-8 window, got %q", result["Liability"])
	}
}

func TestExtract_HeuristicWindowBounded(t *testing.T) {
	raw := "Liability: " + strings.Repeat("a", 2000)

	result := Extract(raw, contractShape)

	if len(result["Liability"]) > DefaultWindow {
		t.Errorf("Expected window capped at %d chars, got %d", DefaultWindow, len(result["Liability"]))
	}
}

func TestExtract_HeuristicWindowShortText(t *testing.T) {
	raw := "Liability is capped."

	result := Extract(raw, contractShape)

	if result["Liability"] != "Liability is capped." {
		t.Errorf("Expected window clipped to text end, got '%s'", result["Liability"])
	}
}

func TestExtract_HeuristicUsesDefaults(t *testing.T) {
	shape := contractShape
	shape.Defaults = map[string]string{"Termination": "not stated"}

	result := Extract("no labels here", shape)

	if result["Termination"] != "not stated" {
		t.Errorf("Expected default value, got '%s'", result["Termination"])
	}
}

func TestNormalize_AliasSpellings(t *testing.T) {
	cases := []map[string]any{
		{"payment_terms": "Net 30"},
		{"Payment Terms": "Net 30"},
		{"paymentterms": "Net 30"},
		{"PAYMENT_TERMS": "Net 30"},
	}

	for _, parsed := range cases {
		result := Normalize(parsed, contractShape)
		if result["PaymentTerms"] != "Net 30" {
			t.Errorf("Input %v: expected alias to map to PaymentTerms, got '%s'", parsed, result["PaymentTerms"])
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	parsed := map[string]any{
		"payment_terms":   "Net 30",
		"Liability":       "Capped",
		"Termination":     nil,
		"Confidentiality": 5,
	}

	once := Normalize(parsed, contractShape)

	asAny := make(map[string]any, len(once))
	for k, v := range once {
		asAny[k] = v
	}
	twice := Normalize(asAny, contractShape)

	for _, key := range contractShape.Keys {
		if once[key] != twice[key] {
			t.Errorf("Key %s: normalize not idempotent: '%s' != '%s'", key, once[key], twice[key])
		}
	}
}

func TestNormalize_FirstNonEmptyWins(t *testing.T) {
	parsed := map[string]any{
		"PaymentTerms":  "",
		"payment_terms": "Net 30",
	}

	result := Normalize(parsed, contractShape)

	if result["PaymentTerms"] != "Net 30" {
		t.Errorf("Expected non-empty colliding value to win, got '%s'", result["PaymentTerms"])
	}
}

func TestNormalize_MissingAndNullBecomeEmpty(t *testing.T) {
	parsed := map[string]any{
		"Liability": nil,
	}

	result := Normalize(parsed, contractShape)

	if result["Liability"] != "" {
		t.Errorf("Expected null to normalize to empty, got '%s'", result["Liability"])
	}
	if result["Termination"] != "" {
		t.Errorf("Expected missing key to normalize to empty, got '%s'", result["Termination"])
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"integer-valued float", float64(10000), "10000"},
		{"fractional float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"nested map", map[string]any{"a": "b"}, `{"a":"b"}`},
		{"list", []any{"x", "y"}, `["x","y"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Stringify(tt.input); got != tt.expected {
				t.Errorf("Stringify(%v) = '%s', expected '%s'", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStringList(t *testing.T) {
	list := StringList([]any{"a", "b", "c", "d"}, 2)
	if len(list) != 2 || list[0] != "a" || list[1] != "b" {
		t.Errorf("Expected capped list [a b], got %v", list)
	}

	scalar := StringList("only", 5)
	if len(scalar) != 1 || scalar[0] != "only" {
		t.Errorf("Expected scalar to become single-element list, got %v", scalar)
	}

	if got := StringList(nil, 5); len(got) != 0 {
		t.Errorf("Expected empty list for nil, got %v", got)
	}

	mixed := StringList([]any{"keep", "", nil, "also"}, 5)
	if len(mixed) != 2 {
		t.Errorf("Expected empty entries dropped, got %v", mixed)
	}
}

func TestFoldKey(t *testing.T) {
	variants := []string{"payment_terms", "Payment Terms", "PaymentTerms", " PAYMENT-TERMS "}
	for _, v := range variants {
		if foldKey(v) != "paymentterms" {
			t.Errorf("foldKey(%q) = %q, expected paymentterms", v, foldKey(v))
		}
	}
}

func truncateForLog(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
