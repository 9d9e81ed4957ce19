// Package memory is a process-local rules backend. Nothing survives a
// restart.
package memory

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"

	"finpal/internal/core"
	"finpal/internal/rules"
)

type Store struct {
	mu    sync.Mutex
	rules *core.RuleSet
	saves int
}

// New returns an empty backend. Load reports rules.ErrNoRules until the first
// Save.
func New() *Store {
	return &Store{}
}

// NewSeeded returns a backend that already holds seed.
func NewSeeded(seed *core.RuleSet) *Store {
	return &Store{rules: seed.Clone()}
}

// NewFromSeedFile reads lines of the form "Category: kw1, kw2". Blank lines
// and lines starting with # are skipped. A missing or empty file yields an
// empty backend.
func NewFromSeedFile(path string) *Store {
	rs := readSeed(path)
	if rs == nil {
		return New()
	}
	return &Store{rules: rs}
}

func (s *Store) Load(_ context.Context) (*core.RuleSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rules == nil {
		return nil, rules.ErrNoRules
	}
	return s.rules.Clone(), nil
}

func (s *Store) Save(_ context.Context, rs *core.RuleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rs.Clone()
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func readSeed(path string) *core.RuleSet {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	rs := core.NewRuleSet()
	seeded := false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, list, _ := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		rs.AddCategory(name)
		seeded = true
		for _, kw := range strings.Split(list, ",") {
			rs.AddKeyword(name, kw)
		}
	}
	if !seeded {
		return nil
	}
	return rs
}
