package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// ProctoringRepository handles the append-only event log and the session
// counters it drives.
type ProctoringRepository struct {
	pool *pgxpool.Pool
}

// NewProctoringRepository creates a new ProctoringRepository.
func NewProctoringRepository(pool *pgxpool.Pool) *ProctoringRepository {
	return &ProctoringRepository{pool: pool}
}

// LogEvent appends an event and updates the session counters in a single
// transaction. incTab and incViolation select which counters the event
// touches; a session row is created in_progress if the candidate has none
// yet. The flag latches once tab_switch_count exceeds the threshold and is
// never cleared here. Returns the post-update counter state.
func (r *ProctoringRepository) LogEvent(ctx context.Context, ev *model.ProctoringEvent, incTab, incViolation bool) (*model.ViolationCounters, error) {
	counters := &model.ViolationCounters{}
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO proctoring_events (candidate_id, test_id, event_type, event_data)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at`,
			ev.CandidateID, ev.TestID, ev.EventType, ev.EventData,
		).Scan(&ev.ID, &ev.CreatedAt)
		if err != nil {
			return err
		}

		tabInc, vioInc := 0, 0
		if incTab {
			tabInc = 1
		}
		if incViolation {
			vioInc = 1
		}

		var maxTabSwitches int
		if err := tx.QueryRow(ctx,
			`SELECT max_tab_switches FROM tests WHERE id = $1`, ev.TestID,
		).Scan(&maxTabSwitches); err != nil {
			return err
		}

		return tx.QueryRow(ctx,
			`INSERT INTO test_sessions (candidate_id, test_id, status, tab_switch_count, violation_count, flagged)
			 VALUES ($1, $2, $3, $4, $5, $4 > $6)
			 ON CONFLICT (candidate_id, test_id) DO UPDATE
			 SET tab_switch_count = test_sessions.tab_switch_count + $4,
			     violation_count = test_sessions.violation_count + $5,
			     flagged = test_sessions.flagged OR (test_sessions.tab_switch_count + $4 > $6),
			     updated_at = NOW()
			 RETURNING tab_switch_count, violation_count, flagged`,
			ev.CandidateID, ev.TestID, model.SessionStatusInProgress, tabInc, vioInc, maxTabSwitches,
		).Scan(&counters.TabSwitchCount, &counters.ViolationCount, &counters.Flagged)
	})
	if err != nil {
		return nil, err
	}
	return counters, nil
}

// ListByTest retrieves all events for a test with candidate identities,
// newest first.
func (r *ProctoringRepository) ListByTest(ctx context.Context, testID int) ([]model.ProctoringEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.candidate_id, e.test_id, e.event_type, e.event_data, e.created_at, u.name, u.email
		 FROM proctoring_events e
		 JOIN users u ON e.candidate_id = u.id
		 WHERE e.test_id = $1
		 ORDER BY e.created_at DESC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ProctoringEvent
	for rows.Next() {
		var ev model.ProctoringEvent
		if err := rows.Scan(&ev.ID, &ev.CandidateID, &ev.TestID, &ev.EventType, &ev.EventData,
			&ev.CreatedAt, &ev.CandidateName, &ev.CandidateEmail); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// ListByCandidateTest retrieves one candidate's events for a test, oldest
// first so the review UI replays them in order.
func (r *ProctoringRepository) ListByCandidateTest(ctx context.Context, candidateID, testID int) ([]model.ProctoringEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, candidate_id, test_id, event_type, event_data, created_at
		 FROM proctoring_events
		 WHERE candidate_id = $1 AND test_id = $2
		 ORDER BY created_at ASC`, candidateID, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ProctoringEvent
	for rows.Next() {
		var ev model.ProctoringEvent
		if err := rows.Scan(&ev.ID, &ev.CandidateID, &ev.TestID, &ev.EventType, &ev.EventData, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Summarize aggregates one candidate's event counts for a test.
func (r *ProctoringRepository) Summarize(ctx context.Context, candidateID, testID int) (*model.EventSummary, error) {
	sum := &model.EventSummary{}
	err := r.pool.QueryRow(ctx,
		`SELECT
		   COUNT(*) FILTER (WHERE event_type = 'tab_switch'),
		   COUNT(*) FILTER (WHERE event_type = 'copy_attempt'),
		   COUNT(*) FILTER (WHERE event_type = 'paste_attempt'),
		   COUNT(*) FILTER (WHERE event_type = 'fullscreen_exit'),
		   COUNT(*)
		 FROM proctoring_events
		 WHERE candidate_id = $1 AND test_id = $2`, candidateID, testID,
	).Scan(&sum.TabSwitches, &sum.CopyAttempts, &sum.PasteAttempts, &sum.FullscreenExits, &sum.TotalEvents)
	if err != nil {
		return nil, err
	}
	return sum, nil
}
