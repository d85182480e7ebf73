package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// QuestionRepository handles question data access. Stored options pass
// through model.ParseOptions so every caller sees one normalized shape.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByTest retrieves a test's questions in their semantic order,
// including answer keys. Callers serving candidates must strip them
// with Question.ForCandidate.
func (r *QuestionRepository) ListByTest(ctx context.Context, testID int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, question_text, question_type,
		        COALESCE(options, ''), COALESCE(correct_answer, '')
		 FROM questions
		 WHERE test_id = $1
		 ORDER BY id`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var rawOptions string
		if err := rows.Scan(&q.ID, &q.TestID, &q.QuestionText, &q.QuestionType, &rawOptions, &q.CorrectAnswer); err != nil {
			return nil, err
		}
		q.Options = model.ParseOptions(rawOptions)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
