package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// SessionRepository handles test session data access. The unique constraint
// on (candidate_id, test_id) backs every upsert here; there is no
// check-then-write anywhere.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, candidate_id, test_id, status, start_time, end_time, score,
	saved_answers, time_remaining, tab_switch_count, violation_count, flagged`

func scanSession(row pgx.Row) (*model.Session, error) {
	s := &model.Session{}
	err := row.Scan(&s.ID, &s.CandidateID, &s.TestID, &s.Status, &s.StartTime, &s.EndTime, &s.Score,
		&s.SavedAnswers, &s.TimeRemaining, &s.TabSwitchCount, &s.ViolationCount, &s.Flagged)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByCandidateTest retrieves the session for a candidate-test pairing.
func (r *SessionRepository) GetByCandidateTest(ctx context.Context, candidateID, testID int) (*model.Session, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+`
		 FROM test_sessions
		 WHERE candidate_id = $1 AND test_id = $2`, candidateID, testID))
}

// UpsertProgress atomically creates or refreshes the live session's saved
// snapshot. First call stamps start_time; later calls leave it untouched and
// the later writer wins on the mutable fields. A completed session is never
// reopened: the conflict update is status-guarded and pgx.ErrNoRows surfaces
// when it declines the write.
func (r *SessionRepository) UpsertProgress(ctx context.Context, candidateID, testID int, answers json.RawMessage, timeRemaining int) (*model.Session, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`INSERT INTO test_sessions (candidate_id, test_id, status, saved_answers, time_remaining)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (candidate_id, test_id) DO UPDATE
		 SET saved_answers = EXCLUDED.saved_answers,
		     time_remaining = EXCLUDED.time_remaining,
		     updated_at = NOW()
		 WHERE test_sessions.status = $3
		 RETURNING `+sessionColumns,
		candidateID, testID, model.SessionStatusInProgress, answers, timeRemaining))
}
