// Package session holds one uploaded statement while the user reviews and
// corrects its categories. Sessions are never persisted.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"finpal/internal/analytics"
	"finpal/internal/categorizer"
	"finpal/internal/core"
	"finpal/internal/loader"
)

// State is where a session is in the edit workflow.
type State int

const (
	Loaded State = iota
	Edited
	Applied
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Edited:
		return "edited"
	case Applied:
		return "applied"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrInvalidRow is returned for an edit that does not address a Debit row.
var ErrInvalidRow = errors.New("invalid debit row")

// Learner receives the keyword learned from each corrected row.
type Learner interface {
	AddKeyword(ctx context.Context, category, keyword string) (bool, error)
}

// ApplyResult reports what Apply did.
type ApplyResult struct {
	Changed int
	Learned int
}

// Row is one Debit row as shown in the edit grid.
type Row struct {
	Index       int
	Transaction core.Transaction
}

// Session is safe for concurrent use.
type Session struct {
	ID        string
	FileName  string
	CreatedAt time.Time

	mu      sync.Mutex
	set     core.TransactionSet
	debits  []int // positions in set.All, in file order
	report  loader.Report
	matched int
	state   State
	settled State // state to fall back to when nothing is staged
	staged  map[int]string
}

// New wraps an already categorized load result.
func New(id, fileName string, result loader.Result, matched int, now time.Time) *Session {
	set := core.NewTransactionSet(result.Transactions)
	return &Session{
		ID:        id,
		FileName:  fileName,
		CreatedAt: now,
		set:       set,
		debits:    set.Indices(core.Debit),
		report:    result.Report,
		matched:   matched,
		staged:    make(map[int]string),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Report returns the loader report of the upload.
func (s *Session) Report() loader.Report {
	return s.report
}

// Matched is how many rows the rules categorized on upload.
func (s *Session) Matched() int {
	return s.matched
}

// Transactions returns a copy of every kept row.
func (s *Session) Transactions() core.TransactionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.NewTransactionSet(append([]core.Transaction(nil), s.set.All...))
}

// DebitRows returns the editable rows, indexed as Stage expects.
func (s *Session) DebitRows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]Row, len(s.debits))
	for i, pos := range s.debits {
		rows[i] = Row{Index: i, Transaction: s.set.All[pos]}
	}
	return rows
}

// CreditRows returns the read-only payment rows.
func (s *Session) CreditRows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Credits()
}

// Summary computes the dashboard views over the current categories.
func (s *Session) Summary() analytics.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.Summarize(s.set)
}

// Stage records edits keyed by Debit row index. has reports whether a
// category exists. Edits equal to the stored category are ignored. Nothing is
// staged if any edit is invalid. It returns how many rows are staged.
func (s *Session) Stage(edits map[int]string, has func(string) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for row, category := range edits {
		if row < 0 || row >= len(s.debits) {
			return 0, fmt.Errorf("%w: %d", ErrInvalidRow, row)
		}
		if !has(category) {
			return 0, fmt.Errorf("%w: %q", core.ErrUnknownCategory, category)
		}
	}

	for row, category := range edits {
		if s.set.All[s.debits[row]].Category == category {
			delete(s.staged, row)
			continue
		}
		s.staged[row] = category
	}
	if len(s.staged) > 0 {
		s.state = Edited
	} else {
		s.state = s.settled
	}
	return len(s.staged), nil
}

// Apply commits every staged category in row order and teaches learner the
// row's normalized Details as a keyword for its new category. A learner error
// stops the run; rows already committed stay committed.
func (s *Session) Apply(ctx context.Context, learner Learner) (ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]int, 0, len(s.staged))
	for row := range s.staged {
		rows = append(rows, row)
	}
	sort.Ints(rows)

	var res ApplyResult
	for _, row := range rows {
		category := s.staged[row]
		tx := &s.set.All[s.debits[row]]
		delete(s.staged, row)
		if tx.Category == category {
			continue
		}
		tx.Category = category
		res.Changed++

		learned, err := learner.AddKeyword(ctx, category, categorizer.Normalize(tx.Details))
		if err != nil {
			return res, fmt.Errorf("learn keyword for row %d: %w", row, err)
		}
		if learned {
			res.Learned++
		}
	}
	s.state = Applied
	s.settled = Applied
	return res, nil
}
