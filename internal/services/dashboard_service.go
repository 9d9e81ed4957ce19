package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"finpal/internal/analytics"
	"finpal/internal/categorizer"
	"finpal/internal/core"
	"finpal/internal/loader"
	"finpal/internal/log"
	"finpal/internal/rules"
	"finpal/internal/session"
)

// ErrSessionNotFound means the session expired or never existed; the user has
// to upload again.
var ErrSessionNotFound = errors.New("session not found")

// DashboardService ties uploads, sessions and the Category Store together.
type DashboardService struct {
	rules    *rules.Store
	sessions *session.Store
	logger   *log.Logger
}

func NewDashboardService(store *rules.Store, sessions *session.Store, logger *log.Logger) *DashboardService {
	if logger == nil {
		logger = log.Discard()
	}
	return &DashboardService{
		rules:    store,
		sessions: sessions,
		logger:   logger.WithComponent(log.ComponentDashboard),
	}
}

// Upload parses a statement, categorizes it with the current rules and opens
// a session for it. A parse failure returns a *core.ParseError and no session.
func (s *DashboardService) Upload(ctx context.Context, fileName string, r io.Reader) (*session.Session, error) {
	result, err := loader.Parse(r)
	if err != nil {
		s.logger.WarnContext(ctx, "Statement rejected",
			log.FieldOperation, log.OpUpload,
			log.FieldFileName, fileName,
			log.FieldError, err)
		return nil, err
	}

	matched := categorizer.Categorize(s.rules.Snapshot(), result.Transactions)
	sess := s.sessions.Create(fileName, result, matched)

	s.logger.InfoContext(ctx, "Statement loaded",
		log.FieldOperation, log.OpUpload,
		log.FieldSessionID, sess.ID,
		log.FieldFileName, fileName,
		log.FieldRows, result.Report.Rows,
		log.FieldKept, result.Report.Kept,
		log.FieldDropped, result.Report.DroppedDates,
		log.FieldDroppedFlow, result.Report.DroppedFlows,
		log.FieldMatched, matched)
	return sess, nil
}

// Session looks up a live session.
func (s *DashboardService) Session(id string) (*session.Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// AddCategory adds an empty category to the rule set.
func (s *DashboardService) AddCategory(ctx context.Context, name string) (bool, error) {
	added, err := s.rules.AddCategory(ctx, name)
	if err != nil {
		return false, fmt.Errorf("add category: %w", err)
	}
	return added, nil
}

// Apply stages edits on the session's Debit rows and commits them, learning a
// keyword for every changed row. Other rows are not re-categorized.
func (s *DashboardService) Apply(ctx context.Context, id string, edits map[int]string) (session.ApplyResult, error) {
	sess, err := s.Session(id)
	if err != nil {
		return session.ApplyResult{}, err
	}
	if _, err := sess.Stage(edits, s.rules.Has); err != nil {
		return session.ApplyResult{}, err
	}

	res, err := sess.Apply(ctx, s.rules)
	if err != nil {
		s.logger.ErrorContext(ctx, "Apply failed",
			log.NewFields().WithOperation(log.OpApply).WithSession(id).WithError(err).ToSlice()...)
		return res, fmt.Errorf("apply changes: %w", err)
	}

	s.logger.InfoContext(ctx, "Changes applied",
		log.FieldOperation, log.OpApply,
		log.FieldSessionID, id,
		log.FieldChanged, res.Changed,
		log.FieldLearned, res.Learned)
	return res, nil
}

// Summary computes the dashboard views of a session.
func (s *DashboardService) Summary(id string) (analytics.Summary, error) {
	sess, err := s.Session(id)
	if err != nil {
		return analytics.Summary{}, err
	}
	return sess.Summary(), nil
}

// Categories returns the category names in insertion order.
func (s *DashboardService) Categories() []string {
	return s.rules.Categories()
}

// Rules returns a copy of the current rule set.
func (s *DashboardService) Rules() *core.RuleSet {
	return s.rules.Snapshot()
}

// Ready reports whether the rules backend is readable.
func (s *DashboardService) Ready(ctx context.Context) error {
	return s.rules.Check(ctx)
}

// EndSession drops a session, for example when its browser uploads a new
// statement.
func (s *DashboardService) EndSession(id string) {
	if id != "" {
		s.sessions.Delete(id)
	}
}
