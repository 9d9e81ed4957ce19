package rules

import (
	"context"
	"errors"
	"time"

	"finpal/internal/core"
)

// ErrNoRules is returned by a Backend that has nothing persisted yet.
var ErrNoRules = errors.New("no persisted rules")

// Ports for outbound adapters.
type (
	// Backend persists the whole rule set. Save overwrites whatever was stored.
	Backend interface {
		Load(ctx context.Context) (*core.RuleSet, error)
		Save(ctx context.Context, rs *core.RuleSet) error
	}

	// Notifier is told about every persisted mutation.
	Notifier interface {
		Notify(ctx context.Context, change Change) error
	}
)

// ChangeKind names a rule set mutation.
type ChangeKind string

const (
	CategoryAdded ChangeKind = "category_added"
	KeywordAdded  ChangeKind = "keyword_added"
)

// Change describes one persisted mutation.
type Change struct {
	Kind     ChangeKind
	Category string
	Keyword  string
	At       time.Time
}

// NopNotifier discards changes.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Change) error { return nil }
