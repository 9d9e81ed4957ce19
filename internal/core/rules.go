package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RuleSet maps category names to keyword lists, keeping insertion order for
// both. Uncategorized is always present.
type RuleSet struct {
	order    []string
	keywords map[string][]string
}

// NewRuleSet returns the default rule set, {"Uncategorized": []}.
func NewRuleSet() *RuleSet {
	rs := &RuleSet{keywords: make(map[string][]string)}
	rs.AddCategory(Uncategorized)
	return rs
}

// NewOrderedRuleSet returns a rule set holding the named empty categories in
// the given order. Uncategorized is put first only when names lacks it.
func NewOrderedRuleSet(names ...string) *RuleSet {
	rs := &RuleSet{keywords: make(map[string][]string)}
	for _, name := range names {
		rs.AddCategory(name)
	}
	rs.ensureUncategorized()
	return rs
}

func (rs *RuleSet) ensureUncategorized() {
	if rs.Has(Uncategorized) {
		return
	}
	rs.order = append([]string{Uncategorized}, rs.order...)
	rs.keywords[Uncategorized] = []string{}
}

// Has reports whether name is a category.
func (rs *RuleSet) Has(name string) bool {
	_, ok := rs.keywords[name]
	return ok
}

// Names returns category names in insertion order.
func (rs *RuleSet) Names() []string {
	return append([]string(nil), rs.order...)
}

// Keywords returns a copy of the keyword list of a category.
func (rs *RuleSet) Keywords(name string) []string {
	return append([]string(nil), rs.keywords[name]...)
}

// Len returns the number of categories, Uncategorized included.
func (rs *RuleSet) Len() int {
	return len(rs.order)
}

// AddCategory inserts an empty category. It returns false if the trimmed name
// is empty or already present.
func (rs *RuleSet) AddCategory(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || rs.Has(name) {
		return false
	}
	rs.order = append(rs.order, name)
	rs.keywords[name] = []string{}
	return true
}

// AddKeyword appends the trimmed keyword to an existing category. It returns
// false if the keyword is empty, already listed, or the category is unknown.
func (rs *RuleSet) AddKeyword(category, keyword string) bool {
	keyword = strings.TrimSpace(keyword)
	list, ok := rs.keywords[category]
	if !ok || keyword == "" {
		return false
	}
	for _, k := range list {
		if k == keyword {
			return false
		}
	}
	rs.keywords[category] = append(list, keyword)
	return true
}

// Clone returns a deep copy.
func (rs *RuleSet) Clone() *RuleSet {
	out := &RuleSet{
		order:    append([]string(nil), rs.order...),
		keywords: make(map[string][]string, len(rs.keywords)),
	}
	for name, list := range rs.keywords {
		out.keywords[name] = append([]string{}, list...)
	}
	return out
}

// Equal compares names, order and keywords.
func (rs *RuleSet) Equal(other *RuleSet) bool {
	if rs.Len() != other.Len() {
		return false
	}
	for i, name := range rs.order {
		if other.order[i] != name {
			return false
		}
		a, b := rs.keywords[name], other.keywords[name]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON writes a JSON object whose keys follow insertion order.
func (rs *RuleSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range rs.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		list, err := json.Marshal(rs.keywords[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(list)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of string arrays, preserving key order.
// Duplicate keywords collapse and Uncategorized is added when missing.
func (rs *RuleSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("rule set must be a JSON object, got %v", tok)
	}

	parsed := &RuleSet{keywords: make(map[string][]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var list []string
		if err := dec.Decode(&list); err != nil {
			return fmt.Errorf("category %q: %w", name, err)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("category with empty name: %w", ErrEmptyCategoryName)
		}
		parsed.AddCategory(name)
		for _, kw := range list {
			parsed.AddKeyword(name, kw)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after rule set")
	}

	parsed.ensureUncategorized()
	*rs = *parsed
	return nil
}
