package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jrmmllrs/test-app-backend/internal/model"
	"github.com/jrmmllrs/test-app-backend/internal/repository"
)

// TestWithQuestions is a test and its question set in one payload.
type TestWithQuestions struct {
	Test      *model.Test      `json:"test"`
	Questions []model.Question `json:"questions"`
}

// TestService manages test authoring and the candidate-facing take payload.
type TestService struct {
	tests     *repository.TestRepository
	questions *repository.QuestionRepository
	results   *repository.ResultRepository
}

// NewTestService creates a new TestService.
func NewTestService(tests *repository.TestRepository, questions *repository.QuestionRepository, results *repository.ResultRepository) *TestService {
	return &TestService{tests: tests, questions: questions, results: results}
}

// Create stores a test with its questions in one transaction.
func (s *TestService) Create(ctx context.Context, p Principal, req *model.CreateTestRequest) (*model.Test, error) {
	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	test := &model.Test{
		Title:       req.Title,
		Description: req.Description,
		TimeLimit:   req.TimeLimit,
		CreatedBy:   p.ID,
	}
	if req.TimeLimit == 0 {
		test.TimeLimit = 30
	}
	applyProctoring(test, req.Proctoring)

	if err := s.tests.CreateWithQuestions(ctx, test, questions); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}
	test.QuestionCount = len(questions)
	return test, nil
}

// Update rewrites a test's metadata and, when questions are supplied,
// replaces the question set wholesale.
func (s *TestService) Update(ctx context.Context, p Principal, testID int, req *model.UpdateTestRequest) (*model.Test, error) {
	existing, err := s.getOwned(ctx, p, testID)
	if err != nil {
		return nil, err
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	existing.Title = req.Title
	existing.Description = req.Description
	if req.TimeLimit > 0 {
		existing.TimeLimit = req.TimeLimit
	}
	applyProctoring(existing, req.Proctoring)

	if err := s.tests.UpdateWithQuestions(ctx, existing, questions); err != nil {
		return nil, fmt.Errorf("update test: %w", err)
	}
	return existing, nil
}

// Delete removes a test and everything hanging off it.
func (s *TestService) Delete(ctx context.Context, p Principal, testID int) error {
	if _, err := s.getOwned(ctx, p, testID); err != nil {
		return err
	}
	return s.tests.Delete(ctx, testID)
}

// Get returns a test with its full question set, keys included, for its
// owner or an admin.
func (s *TestService) Get(ctx context.Context, p Principal, testID int) (*TestWithQuestions, error) {
	test, err := s.getOwned(ctx, p, testID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return &TestWithQuestions{Test: test, Questions: questions}, nil
}

// MyTests lists the tests the principal authored.
func (s *TestService) MyTests(ctx context.Context, p Principal) ([]model.Test, error) {
	return s.tests.ListByCreator(ctx, p.ID)
}

// Available lists every test a candidate may browse.
func (s *TestService) Available(ctx context.Context) ([]model.Test, error) {
	return s.tests.ListAvailable(ctx)
}

// ForTaking returns the candidate-facing payload: test metadata plus
// questions with the answer keys stripped. Only candidates may take tests,
// and never twice.
func (s *TestService) ForTaking(ctx context.Context, p Principal, testID int) (*TestWithQuestions, error) {
	if p.Role != model.RoleCandidate {
		return nil, fmt.Errorf("test %d: only candidates may take tests: %w", testID, ErrForbidden)
	}

	done, err := s.results.Has(ctx, p.ID, testID)
	if err != nil {
		return nil, fmt.Errorf("check result: %w", err)
	}
	if done {
		return nil, fmt.Errorf("test %d: %w", testID, ErrAlreadyCompleted)
	}

	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("test %d: %w", testID, ErrNotFound)
		}
		return nil, fmt.Errorf("get test: %w", err)
	}

	questions, err := s.questions.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	stripped := make([]model.Question, 0, len(questions))
	for _, q := range questions {
		stripped = append(stripped, q.ForCandidate())
	}
	return &TestWithQuestions{Test: test, Questions: stripped}, nil
}

func (s *TestService) getOwned(ctx context.Context, p Principal, testID int) (*model.Test, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("test %d: %w", testID, ErrNotFound)
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	if !p.CanManage(test.CreatedBy) {
		return nil, fmt.Errorf("test %d not owned by caller: %w", testID, ErrForbidden)
	}
	return test, nil
}

func applyProctoring(test *model.Test, settings *model.ProctoringSettings) {
	if settings == nil {
		return
	}
	test.EnableProctoring = settings.EnableProctoring
	test.MaxTabSwitches = settings.MaxTabSwitches
	test.AllowCopyPaste = settings.AllowCopyPaste
	test.RequireFullscreen = settings.RequireFullscreen
}

// buildQuestions validates and converts authoring payloads. Auto-graded
// questions must carry an answer key; multiple choice needs at least two
// options containing the key.
func buildQuestions(reqs []model.CreateQuestionRequest) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(reqs))
	for i, qr := range reqs {
		qt := model.QuestionType(qr.QuestionType)

		if qt.AutoGraded() && qr.CorrectAnswer == "" {
			return nil, fmt.Errorf("question %d: %s requires a correct answer: %w", i+1, qt, ErrInvalidInput)
		}
		if qt == model.QuestionTypeMultipleChoice && len(qr.Options) < 2 {
			return nil, fmt.Errorf("question %d: multiple choice requires at least two options: %w", i+1, ErrInvalidInput)
		}

		options := qr.Options
		if qt == model.QuestionTypeTrueFalse && len(options) == 0 {
			options = []string{"True", "False"}
		}

		questions = append(questions, model.Question{
			QuestionText:  qr.QuestionText,
			QuestionType:  qt,
			Options:       options,
			CorrectAnswer: qr.CorrectAnswer,
		})
	}
	return questions, nil
}
