// Package rules holds the Category Store: the in-memory rule set, its
// persistence backend and change notifications.
//
// Every mutation is applied to a copy, saved synchronously, and only then
// made visible, so a failed save leaves the store unchanged.
package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"finpal/internal/core"
	"finpal/internal/log"
)

// Store is the Category Store. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	rules    *core.RuleSet
	backend  Backend
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets the change notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns a store holding the default rule set. Call Load to read
// the persisted one.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		rules:    core.NewRuleSet(),
		backend:  backend,
		notifier: NopNotifier{},
		logger:   log.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory rules with the persisted ones. Nothing persisted
// yields the default set with no error. Any other failure also yields the
// default set, and the returned error is a *core.ConfigError for the caller to
// report.
func (s *Store) Load(ctx context.Context) error {
	rs, err := s.backend.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, ErrNoRules):
		s.rules = core.NewRuleSet()
		s.logger.InfoContext(ctx, "No saved category rules, starting with defaults", log.FieldOperation, log.OpLoad)
		return nil
	case err != nil:
		s.rules = core.NewRuleSet()
		var cfgErr *core.ConfigError
		if !errors.As(err, &cfgErr) {
			err = &core.ConfigError{Err: err}
		}
		return err
	}

	s.rules = rs
	s.logger.InfoContext(ctx, "Category rules loaded", log.FieldOperation, log.OpLoad, "categories", rs.Len())
	return nil
}

// Snapshot returns a copy of the current rule set.
func (s *Store) Snapshot() *core.RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules.Clone()
}

// Categories returns category names in insertion order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules.Names()
}

// Has reports whether name is a category.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules.Has(name)
}

// AddCategory inserts an empty category and persists. It returns false when
// the category already exists.
func (s *Store) AddCategory(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, core.ErrEmptyCategoryName
	}
	return s.mutate(ctx, Change{Kind: CategoryAdded, Category: name}, func(rs *core.RuleSet) bool {
		return rs.AddCategory(name)
	})
}

// AddKeyword appends keyword to category and persists. It returns false when
// the trimmed keyword is empty or already listed. Keywords are never learned
// for Uncategorized, which is not matched against.
func (s *Store) AddKeyword(ctx context.Context, category, keyword string) (bool, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || category == core.Uncategorized {
		return false, nil
	}
	if !s.Has(category) {
		return false, fmt.Errorf("%w: %q", core.ErrUnknownCategory, category)
	}
	return s.mutate(ctx, Change{Kind: KeywordAdded, Category: category, Keyword: keyword}, func(rs *core.RuleSet) bool {
		return rs.AddKeyword(category, keyword)
	})
}

func (s *Store) mutate(ctx context.Context, change Change, apply func(*core.RuleSet) bool) (bool, error) {
	s.mu.Lock()
	next := s.rules.Clone()
	if !apply(next) {
		s.mu.Unlock()
		return false, nil
	}
	if err := s.backend.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("save category rules: %w", err)
	}
	s.rules = next
	s.mu.Unlock()

	change.At = s.now()
	fields := log.NewFields().WithOperation(string(change.Kind)).WithRule(change.Category, change.Keyword)
	s.logger.InfoContext(ctx, "Category rules updated", fields.ToSlice()...)

	if err := s.notifier.Notify(ctx, change); err != nil {
		s.logger.WarnContext(ctx, "Rule change notification failed", fields.WithError(err).ToSlice()...)
	}
	return true, nil
}

// Check reports whether the backend can be read. Nothing persisted counts as
// ready.
func (s *Store) Check(ctx context.Context) error {
	if _, err := s.backend.Load(ctx); err != nil && !errors.Is(err, ErrNoRules) {
		return err
	}
	return nil
}
