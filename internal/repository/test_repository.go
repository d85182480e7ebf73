package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// TestRepository handles test and question data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// GetByID retrieves a test with its question count.
func (r *TestRepository) GetByID(ctx context.Context, id int) (*model.Test, error) {
	return scanTest(r.pool.QueryRow(ctx,
		`SELECT t.id, t.title, COALESCE(t.description, ''), t.time_limit,
		        t.enable_proctoring, t.max_tab_switches, t.allow_copy_paste, t.require_fullscreen,
		        t.created_by, t.created_at,
		        (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id)
		 FROM tests t
		 WHERE t.id = $1`, id))
}

func scanTest(row pgx.Row) (*model.Test, error) {
	t := &model.Test{}
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.TimeLimit,
		&t.EnableProctoring, &t.MaxTabSwitches, &t.AllowCopyPaste, &t.RequireFullscreen,
		&t.CreatedBy, &t.CreatedAt, &t.QuestionCount)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateWithQuestions inserts a test and its questions in one transaction.
func (r *TestRepository) CreateWithQuestions(ctx context.Context, t *model.Test, questions []model.Question) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO tests (title, description, time_limit, enable_proctoring,
			                    max_tab_switches, allow_copy_paste, require_fullscreen, created_by)
			 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at`,
			t.Title, t.Description, t.TimeLimit, t.EnableProctoring,
			t.MaxTabSwitches, t.AllowCopyPaste, t.RequireFullscreen, t.CreatedBy,
		).Scan(&t.ID, &t.CreatedAt)
		if err != nil {
			return err
		}
		return insertQuestions(ctx, tx, t.ID, questions)
	})
}

// UpdateWithQuestions updates a test and, when questions is non-empty,
// replaces its question set wholesale, all in one transaction.
func (r *TestRepository) UpdateWithQuestions(ctx context.Context, t *model.Test, questions []model.Question) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE tests
			 SET title = $1, description = NULLIF($2, ''), time_limit = $3,
			     enable_proctoring = $4, max_tab_switches = $5,
			     allow_copy_paste = $6, require_fullscreen = $7
			 WHERE id = $8`,
			t.Title, t.Description, t.TimeLimit, t.EnableProctoring,
			t.MaxTabSwitches, t.AllowCopyPaste, t.RequireFullscreen, t.ID)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE test_id = $1`, t.ID); err != nil {
			return err
		}
		return insertQuestions(ctx, tx, t.ID, questions)
	})
}

func insertQuestions(ctx context.Context, db DB, testID int, questions []model.Question) error {
	for i := range questions {
		q := &questions[i]
		err := db.QueryRow(ctx,
			`INSERT INTO questions (test_id, question_text, question_type, options, correct_answer)
			 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
			 RETURNING id`,
			testID, q.QuestionText, q.QuestionType,
			model.EncodeOptions(q.Options), q.CorrectAnswer,
		).Scan(&q.ID)
		if err != nil {
			return err
		}
		q.TestID = testID
	}
	return nil
}

// Delete removes a test; questions, sessions, and invitations cascade.
func (r *TestRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	return err
}

// ListByCreator retrieves tests authored by a user, newest first.
func (r *TestRepository) ListByCreator(ctx context.Context, creatorID int) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.title, COALESCE(t.description, ''), t.time_limit, t.created_by, t.created_at,
		        COUNT(q.id)
		 FROM tests t
		 LEFT JOIN questions q ON t.id = q.test_id
		 WHERE t.created_by = $1
		 GROUP BY t.id
		 ORDER BY t.created_at DESC`, creatorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTestRows(rows, false)
}

// ListAvailable retrieves all tests with creator names, for candidates.
func (r *TestRepository) ListAvailable(ctx context.Context) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.title, COALESCE(t.description, ''), t.time_limit, t.created_by, t.created_at,
		        COUNT(q.id), u.name
		 FROM tests t
		 LEFT JOIN questions q ON t.id = q.test_id
		 LEFT JOIN users u ON t.created_by = u.id
		 GROUP BY t.id, u.name
		 ORDER BY t.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTestRows(rows, true)
}

func collectTestRows(rows pgx.Rows, withCreatorName bool) ([]model.Test, error) {
	var tests []model.Test
	for rows.Next() {
		var t model.Test
		dest := []any{&t.ID, &t.Title, &t.Description, &t.TimeLimit, &t.CreatedBy, &t.CreatedAt, &t.QuestionCount}
		if withCreatorName {
			dest = append(dest, &t.CreatedByName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}
