// Package http serves the finpal dashboard and its JSON API.
package http

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// EditFieldPrefix prefixes the form field of each Debit row's category select.
const EditFieldPrefix = "category_"

// ErrBadEditField is returned for a category_<row> field whose row is not a
// non-negative integer.
var ErrBadEditField = errors.New("malformed edit field")

// ParseCategoryEdits collects category_<row> fields into a row -> category
// map. Other fields are ignored. Values are sanitized.
func ParseCategoryEdits(form url.Values) (map[int]string, error) {
	edits := make(map[int]string)
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		suffix, ok := strings.CutPrefix(key, EditFieldPrefix)
		if !ok {
			continue
		}
		row, err := strconv.Atoi(suffix)
		if err != nil || row < 0 {
			return nil, fmt.Errorf("%w: %q", ErrBadEditField, key)
		}
		edits[row] = sanitizeInput(form.Get(key))
	}
	return edits, nil
}

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
