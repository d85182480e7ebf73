package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// ProctoringStore is the persistence surface ProctoringService depends on.
type ProctoringStore interface {
	LogEvent(ctx context.Context, ev *model.ProctoringEvent, incTab, incViolation bool) (*model.ViolationCounters, error)
	ListByTest(ctx context.Context, testID int) ([]model.ProctoringEvent, error)
	ListByCandidateTest(ctx context.Context, candidateID, testID int) ([]model.ProctoringEvent, error)
	Summarize(ctx context.Context, candidateID, testID int) (*model.EventSummary, error)
}

// ProctoringTestStore provides test metadata and the proctoring policy.
type ProctoringTestStore interface {
	GetByID(ctx context.Context, id int) (*model.Test, error)
}

// MonitorPublisher fans a committed event out to live monitor streams.
type MonitorPublisher interface {
	PublishMonitorUpdate(ctx context.Context, u model.MonitorUpdate) error
}

// CandidateReport bundles one candidate's integrity record for a test.
type CandidateReport struct {
	Events  []model.ProctoringEvent `json:"events"`
	Summary *model.EventSummary     `json:"summary"`
}

// ProctoringService records integrity events and serves review views.
type ProctoringService struct {
	events    ProctoringStore
	tests     ProctoringTestStore
	publisher MonitorPublisher
}

// NewProctoringService creates a new ProctoringService.
func NewProctoringService(events ProctoringStore, tests ProctoringTestStore, publisher MonitorPublisher) *ProctoringService {
	return &ProctoringService{events: events, tests: tests, publisher: publisher}
}

// LogEvent appends an integrity event for the authenticated candidate and
// returns the updated counters. The candidate identity always comes from the
// principal; the payload cannot log on behalf of anyone else. Unknown event
// kinds are logged but never counted.
func (s *ProctoringService) LogEvent(ctx context.Context, p Principal, req *model.LogEventRequest) (*model.ViolationCounters, error) {
	if _, err := s.tests.GetByID(ctx, req.TestID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("test %d: %w", req.TestID, ErrNotFound)
		}
		return nil, fmt.Errorf("get test: %w", err)
	}

	kind := model.EventKind(req.EventType)
	ev := &model.ProctoringEvent{
		CandidateID: p.ID,
		TestID:      req.TestID,
		EventType:   kind,
		EventData:   req.EventData,
	}

	counters, err := s.events.LogEvent(ctx, ev, kind.CountsTabSwitch(), kind.CountsViolation())
	if err != nil {
		return nil, fmt.Errorf("log event: %w", err)
	}

	update := model.MonitorUpdate{
		CandidateID: p.ID,
		TestID:      req.TestID,
		EventType:   kind,
		Counters:    *counters,
		At:          time.Now(),
	}
	if err := s.publisher.PublishMonitorUpdate(ctx, update); err != nil {
		log.Warn().Err(err).Int("test_id", req.TestID).Msg("monitor publish failed")
	}
	return counters, nil
}

// Settings returns the client-enforced proctoring policy for a test.
// Candidates may read this, so no ownership check applies.
func (s *ProctoringService) Settings(ctx context.Context, testID int) (*model.ProctoringSettings, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("test %d: %w", testID, ErrNotFound)
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	return &model.ProctoringSettings{
		EnableProctoring:  test.EnableProctoring,
		MaxTabSwitches:    test.MaxTabSwitches,
		AllowCopyPaste:    test.AllowCopyPaste,
		RequireFullscreen: test.RequireFullscreen,
	}, nil
}

// ListTestEvents returns every event logged against a test, for its owner
// or an admin.
func (s *ProctoringService) ListTestEvents(ctx context.Context, p Principal, testID int) ([]model.ProctoringEvent, error) {
	if err := s.requireOwnership(ctx, p, testID); err != nil {
		return nil, err
	}
	return s.events.ListByTest(ctx, testID)
}

// Report returns one candidate's events and aggregate counts for a test,
// for its owner or an admin.
func (s *ProctoringService) Report(ctx context.Context, p Principal, candidateID, testID int) (*CandidateReport, error) {
	if err := s.requireOwnership(ctx, p, testID); err != nil {
		return nil, err
	}

	events, err := s.events.ListByCandidateTest(ctx, candidateID, testID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	summary, err := s.events.Summarize(ctx, candidateID, testID)
	if err != nil {
		return nil, fmt.Errorf("summarize events: %w", err)
	}
	return &CandidateReport{Events: events, Summary: summary}, nil
}

func (s *ProctoringService) requireOwnership(ctx context.Context, p Principal, testID int) error {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("test %d: %w", testID, ErrNotFound)
		}
		return fmt.Errorf("get test: %w", err)
	}
	if !p.CanManage(test.CreatedBy) {
		return fmt.Errorf("test %d not owned by caller: %w", testID, ErrForbidden)
	}
	return nil
}
