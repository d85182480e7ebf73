package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// SessionStore is the persistence surface SessionService depends on.
type SessionStore interface {
	GetByCandidateTest(ctx context.Context, candidateID, testID int) (*model.Session, error)
	UpsertProgress(ctx context.Context, candidateID, testID int, answers json.RawMessage, timeRemaining int) (*model.Session, error)
}

// SessionResultStore answers whether a candidate already holds a result.
type SessionResultStore interface {
	GetByCandidateTest(ctx context.Context, candidateID, testID int) (*model.Result, error)
}

// SessionService tracks in-progress attempts: resume state and autosave.
type SessionService struct {
	sessions SessionStore
	results  SessionResultStore
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions SessionStore, results SessionResultStore) *SessionService {
	return &SessionService{sessions: sessions, results: results}
}

// GetStatus resolves the candidate's state for a test. A result always wins
// over whatever the session row says: once graded, the attempt is completed
// regardless of any stale in_progress row.
func (s *SessionService) GetStatus(ctx context.Context, candidateID, testID int) (*model.SessionState, error) {
	res, err := s.results.GetByCandidateTest(ctx, candidateID, testID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get result: %w", err)
	}
	if res != nil {
		return &model.SessionState{Status: model.SessionStatusCompleted, Result: res}, nil
	}

	sess, err := s.sessions.GetByCandidateTest(ctx, candidateID, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.SessionState{Status: model.SessionStatusNotStarted}, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	state := &model.SessionState{
		Status:    sess.Status,
		StartTime: &sess.StartTime,
	}
	if sess.Status == model.SessionStatusInProgress {
		state.SavedAnswers = sess.SavedAnswers
		state.TimeRemaining = sess.TimeRemaining
	}
	return state, nil
}

// SaveProgress persists the autosave snapshot. The write creates the session
// row on first save and refuses to touch a completed one.
func (s *SessionService) SaveProgress(ctx context.Context, candidateID, testID int, req *model.SaveProgressRequest) (*model.Session, error) {
	if req.TimeRemaining == nil || *req.TimeRemaining < 0 {
		return nil, fmt.Errorf("time_remaining must be a non-negative integer: %w", ErrInvalidInput)
	}

	res, err := s.results.GetByCandidateTest(ctx, candidateID, testID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get result: %w", err)
	}
	if res != nil {
		return nil, fmt.Errorf("test %d: %w", testID, ErrAlreadyCompleted)
	}

	answers, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	sess, err := s.sessions.UpsertProgress(ctx, candidateID, testID, answers, *req.TimeRemaining)
	if err != nil {
		// The status guard rejects writes to completed sessions.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("test %d: %w", testID, ErrAlreadyCompleted)
		}
		return nil, fmt.Errorf("save progress: %w", err)
	}
	return sess, nil
}
