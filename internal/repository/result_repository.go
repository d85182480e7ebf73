package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// ResultRepository handles result and answer data access, including the
// atomic submission write.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Has reports whether a result exists for a candidate-test pairing.
func (r *ResultRepository) Has(ctx context.Context, candidateID, testID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM results WHERE candidate_id = $1 AND test_id = $2)`,
		candidateID, testID,
	).Scan(&exists)
	return exists, err
}

// GetByCandidateTest retrieves the result for a candidate-test pairing.
func (r *ResultRepository) GetByCandidateTest(ctx context.Context, candidateID, testID int) (*model.Result, error) {
	res := &model.Result{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, candidate_id, test_id, total_questions, correct_answers, score, remarks, taken_at
		 FROM results
		 WHERE candidate_id = $1 AND test_id = $2`, candidateID, testID,
	).Scan(&res.ID, &res.CandidateID, &res.TestID, &res.TotalQuestions, &res.CorrectAnswers,
		&res.Score, &res.Remarks, &res.TakenAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SaveSubmission commits one graded submission in a single transaction:
// the immutable result, one answer row per question, and the session flipped
// to completed with its snapshot cleared. A duplicate submission hits the
// results unique constraint and rolls everything back; callers detect it
// with IsUniqueViolation.
func (r *ResultRepository) SaveSubmission(ctx context.Context, res *model.Result, answers []model.Answer) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO results (candidate_id, test_id, total_questions, correct_answers, score, remarks)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, taken_at`,
			res.CandidateID, res.TestID, res.TotalQuestions, res.CorrectAnswers, res.Score, res.Remarks,
		).Scan(&res.ID, &res.TakenAt)
		if err != nil {
			return err
		}

		for i := range answers {
			a := &answers[i]
			_, err := tx.Exec(ctx,
				`INSERT INTO answers (candidate_id, question_id, answer, is_correct)
				 VALUES ($1, $2, NULLIF($3, ''), $4)`,
				a.CandidateID, a.QuestionID, a.Answer, a.IsCorrect)
			if err != nil {
				return err
			}
		}

		// The saved snapshot and countdown are meaningless once completed.
		_, err = tx.Exec(ctx,
			`INSERT INTO test_sessions (candidate_id, test_id, status, end_time, score, saved_answers, time_remaining)
			 VALUES ($1, $2, $3, NOW(), $4, NULL, NULL)
			 ON CONFLICT (candidate_id, test_id) DO UPDATE
			 SET status = $3, end_time = NOW(), score = $4,
			     saved_answers = NULL, time_remaining = NULL, updated_at = NOW()`,
			res.CandidateID, res.TestID, model.SessionStatusCompleted, res.Score)
		return err
	})
}

// ListByCandidate retrieves a candidate's results with test metadata.
func (r *ResultRepository) ListByCandidate(ctx context.Context, candidateID int) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT res.id, res.candidate_id, res.test_id, res.total_questions, res.correct_answers,
		        res.score, res.remarks, res.taken_at, t.title
		 FROM results res
		 JOIN tests t ON res.test_id = t.id
		 WHERE res.candidate_id = $1
		 ORDER BY res.taken_at DESC`, candidateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.ID, &res.CandidateID, &res.TestID, &res.TotalQuestions, &res.CorrectAnswers,
			&res.Score, &res.Remarks, &res.TakenAt, &res.TestTitle); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// ListByTest retrieves all candidate results for a test.
func (r *ResultRepository) ListByTest(ctx context.Context, testID int) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT res.id, res.candidate_id, res.test_id, res.total_questions, res.correct_answers,
		        res.score, res.remarks, res.taken_at, u.name, u.email
		 FROM results res
		 JOIN users u ON res.candidate_id = u.id
		 WHERE res.test_id = $1
		 ORDER BY res.taken_at DESC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResultRows(rows)
}

// ListAll retrieves every result with candidate and test metadata, for admins.
func (r *ResultRepository) ListAll(ctx context.Context) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT res.id, res.candidate_id, res.test_id, res.total_questions, res.correct_answers,
		        res.score, res.remarks, res.taken_at, u.name, u.email, t.title
		 FROM results res
		 JOIN users u ON res.candidate_id = u.id
		 JOIN tests t ON res.test_id = t.id
		 ORDER BY res.taken_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.ID, &res.CandidateID, &res.TestID, &res.TotalQuestions, &res.CorrectAnswers,
			&res.Score, &res.Remarks, &res.TakenAt, &res.CandidateName, &res.CandidateEmail, &res.TestTitle); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func collectResultRows(rows pgx.Rows) ([]model.Result, error) {
	var results []model.Result
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.ID, &res.CandidateID, &res.TestID, &res.TotalQuestions, &res.CorrectAnswers,
			&res.Score, &res.Remarks, &res.TakenAt, &res.CandidateName, &res.CandidateEmail); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
