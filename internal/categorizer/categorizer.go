// Package categorizer assigns categories to transactions by exact,
// case-insensitive keyword match on the Details field.
//
// Categories are tried in rule-set insertion order and the first category
// whose keyword set contains the normalized Details wins. Uncategorized is
// never matched against; it is the result when nothing matches. There is no
// substring or fuzzy matching.
package categorizer

import (
	"strings"

	"finpal/internal/core"
)

type rule struct {
	category string
	keywords map[string]struct{}
}

// Matcher is a compiled, read-only view of a rule set.
type Matcher struct {
	rules []rule
}

// Normalize lowercases and trims s, the form both keywords and details are
// compared in.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Compile builds the keyword sets of rs. Later changes to rs are not seen.
func Compile(rs *core.RuleSet) Matcher {
	var m Matcher
	for _, name := range rs.Names() {
		if name == core.Uncategorized {
			continue
		}
		kws := rs.Keywords(name)
		if len(kws) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(kws))
		for _, kw := range kws {
			if n := Normalize(kw); n != "" {
				set[n] = struct{}{}
			}
		}
		if len(set) == 0 {
			continue
		}
		m.rules = append(m.rules, rule{category: name, keywords: set})
	}
	return m
}

// Match returns the first category whose keywords contain details, or
// Uncategorized.
func (m Matcher) Match(details string) string {
	n := Normalize(details)
	for _, r := range m.rules {
		if _, ok := r.keywords[n]; ok {
			return r.category
		}
	}
	return core.Uncategorized
}

// Categorize sets Category on every transaction and returns how many matched
// a rule.
func Categorize(rs *core.RuleSet, txs []core.Transaction) int {
	m := Compile(rs)
	matched := 0
	for i := range txs {
		txs[i].Category = m.Match(txs[i].Details)
		if txs[i].Category != core.Uncategorized {
			matched++
		}
	}
	return matched
}
