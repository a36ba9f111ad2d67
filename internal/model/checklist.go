package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChecklistItem is one required provision: a name and its rule text.
type ChecklistItem struct {
	Key  string
	Rule string
}

// Checklist is an ordered list of required provisions. Order follows
// the source document; keys are unique.
type Checklist struct {
	items []ChecklistItem
	index map[string]int
}

// NewChecklist builds a checklist from ordered items.
// Duplicate keys and empty keys are rejected.
func NewChecklist(items []ChecklistItem) (*Checklist, error) {
	c := &Checklist{index: make(map[string]int, len(items))}
	for _, item := range items {
		key := strings.TrimSpace(item.Key)
		if key == "" {
			return nil, fmt.Errorf("checklist contains an empty key")
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("duplicate checklist key: %q", key)
		}
		c.index[key] = len(c.items)
		c.items = append(c.items, ChecklistItem{Key: key, Rule: item.Rule})
	}
	return c, nil
}

// Len returns the number of checklist items.
func (c *Checklist) Len() int {
	return len(c.items)
}

// Items returns the checklist items in source order.
func (c *Checklist) Items() []ChecklistItem {
	out := make([]ChecklistItem, len(c.items))
	copy(out, c.items)
	return out
}

// Keys returns the checklist keys in source order.
func (c *Checklist) Keys() []string {
	keys := make([]string, len(c.items))
	for i, item := range c.items {
		keys[i] = item.Key
	}
	return keys
}

// Rule returns the rule text for a key, and whether the key exists.
func (c *Checklist) Rule(key string) (string, bool) {
	if i, ok := c.index[key]; ok {
		return c.items[i].Rule, true
	}
	return "", false
}

// Map returns the checklist as a plain map (order lost).
func (c *Checklist) Map() map[string]string {
	m := make(map[string]string, len(c.items))
	for _, item := range c.items {
		m[item.Key] = item.Rule
	}
	return m
}

// LoadChecklist reads a checklist from a JSON or YAML file, keyed by
// extension. Both formats are a single mapping of requirement name to
// rule text; source order is preserved.
func LoadChecklist(path string) (*Checklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checklist: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseChecklistYAML(data)
	default:
		return ParseChecklistJSON(data)
	}
}

// ParseChecklistJSON decodes a JSON object while preserving key order.
// encoding/json maps lose order, so the object is walked token by token.
func ParseChecklistJSON(data []byte) (*Checklist, error) {
	dec := json.NewDecoder(strings.NewReader(string(data)))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse checklist: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("checklist must be a JSON object")
	}

	var items []ChecklistItem
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse checklist key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("checklist key is not a string: %v", keyTok)
		}

		var rule string
		if err := dec.Decode(&rule); err != nil {
			return nil, fmt.Errorf("checklist value for %q must be a string: %w", key, err)
		}
		items = append(items, ChecklistItem{Key: key, Rule: rule})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("checklist is empty")
	}
	return NewChecklist(items)
}

// ParseChecklistYAML decodes a YAML mapping preserving key order via the
// node API (yaml.v3 mapping nodes keep key/value pairs in order).
func ParseChecklistYAML(data []byte) (*Checklist, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse checklist: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("checklist is empty")
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("checklist must be a YAML mapping")
	}

	var items []ChecklistItem
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode := mapping.Content[i]
		valNode := mapping.Content[i+1]
		if valNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("checklist value for %q must be a string", keyNode.Value)
		}
		items = append(items, ChecklistItem{Key: keyNode.Value, Rule: valNode.Value})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("checklist is empty")
	}
	return NewChecklist(items)
}
