// Package extract turns free-text model responses into fixed-shape
// records. Extraction is a total function: whatever the model replied
// (or failed to reply), the result contains every required key.
package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultWindow is how many characters of context a heuristic label
// match captures as the field's best-effort value.
const DefaultWindow = 500

// Shape describes the record a model response is expected to contain:
// the canonical required keys, per-key defaults, and accepted key
// aliases (alternate casings and spellings).
type Shape struct {
	// Name identifies the shape in diagnostics.
	Name string

	// Keys are the canonical required keys, in output order.
	Keys []string

	// Defaults supplies per-key fallback values (missing key = "").
	Defaults map[string]string

	// Aliases maps alternate spellings to canonical keys, e.g.
	// "Payment Terms" -> "PaymentTerms". Case and separator variants
	// of canonical keys are accepted without being listed.
	Aliases map[string]string

	// Window overrides DefaultWindow for heuristic snippets.
	Window int
}

// Extract parses raw model output into a complete record for the shape.
//
// Parse order: JSON object between the first '{' and last '}'; failing
// that, the whole text as JSON; failing that, heuristic label-window
// extraction over the shape defaults. Never returns an error; every
// required key is present in the result, possibly empty.
func Extract(raw string, shape Shape) map[string]string {
	if parsed, ok := ExtractObject(raw); ok {
		return Normalize(parsed, shape)
	}
	return heuristic(raw, shape)
}

// ExtractObject salvages a JSON object from free text. It parses the
// substring between the first '{' and the last '}'; when no braces are
// present it attempts the entire text.
func ExtractObject(raw string) (map[string]any, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")

	candidate := raw
	if start != -1 && end != -1 && end > start {
		candidate = raw[start : end+1]
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

// Normalize maps parsed keys onto the shape's canonical keys via the
// alias table and coerces values to strings. Missing and null values
// normalize to the empty string. Idempotent: normalizing an
// already-normalized record returns it unchanged.
func Normalize(parsed map[string]any, shape Shape) map[string]string {
	byFold := make(map[string]any, len(parsed))
	for k, v := range parsed {
		canonical := shape.canonicalKey(k)
		// When multiple spellings collide, keep the first non-empty value
		if prev, exists := byFold[canonical]; !exists || Stringify(prev) == "" {
			byFold[canonical] = v
		}
	}

	out := make(map[string]string, len(shape.Keys))
	for _, key := range shape.Keys {
		out[key] = Stringify(byFold[key])
	}
	return out
}

// canonicalKey resolves a response key to a canonical shape key, or
// returns it unchanged when nothing matches.
func (s Shape) canonicalKey(key string) string {
	fold := foldKey(key)
	for _, canonical := range s.Keys {
		if foldKey(canonical) == fold {
			return canonical
		}
	}
	for alias, canonical := range s.Aliases {
		if foldKey(alias) == fold {
			return canonical
		}
	}
	return key
}

// heuristic builds the record from defaults, then scans the raw text
// case-insensitively for each key's label (and its aliases) and takes
// a bounded window from the match as the best-effort value.
func heuristic(raw string, shape Shape) map[string]string {
	window := shape.Window
	if window <= 0 {
		window = DefaultWindow
	}

	// Match positions come from the lowercased text. Lowercasing can
	// change a rune's encoded length, and then those positions are not
	// valid offsets into raw; in that case the windows are sliced from
	// the lowercased text instead.
	lower := strings.ToLower(raw)
	source := raw
	if len(lower) != len(raw) {
		source = lower
	}

	out := make(map[string]string, len(shape.Keys))
	for _, key := range shape.Keys {
		out[key] = shape.Defaults[key]

		for _, label := range shape.labels(key) {
			idx := strings.Index(lower, strings.ToLower(label))
			if idx == -1 {
				continue
			}
			end := idx + window
			if end > len(source) {
				end = len(source)
			}
			for end > idx && end < len(source) && !utf8.RuneStart(source[end]) {
				end--
			}
			out[key] = source[idx:end]
			break
		}
	}
	return out
}

// labels returns the search labels for a key: the key itself plus any
// aliases that map to it.
func (s Shape) labels(key string) []string {
	labels := []string{key}
	for alias, canonical := range s.Aliases {
		if canonical == key {
			labels = append(labels, alias)
		}
	}
	return labels
}

// foldKey collapses case and separators so "payment_terms",
// "Payment Terms" and "PaymentTerms" compare equal.
func foldKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '_', '-', '\t':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Stringify coerces a parsed JSON value into a string. Nested values
// are re-marshaled so structure is preserved rather than dropped.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

// StringList coerces a parsed JSON value into a list of strings capped
// at max entries. Scalars become single-element lists; nil is empty.
func StringList(v any, max int) []string {
	var out []string
	switch t := v.(type) {
	case nil:
	case []any:
		for _, item := range t {
			if s := Stringify(item); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := Stringify(v); s != "" {
			out = append(out, s)
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
