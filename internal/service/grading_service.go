package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/jrmmllrs/test-app-backend/internal/model"
	"github.com/jrmmllrs/test-app-backend/internal/repository"
)

// GradingTestStore provides the immutable test under grading.
type GradingTestStore interface {
	GetByID(ctx context.Context, id int) (*model.Test, error)
}

// GradingQuestionStore provides a test's question set with answer keys.
type GradingQuestionStore interface {
	ListByTest(ctx context.Context, testID int) ([]model.Question, error)
}

// GradingResultStore persists the graded submission.
type GradingResultStore interface {
	Has(ctx context.Context, candidateID, testID int) (bool, error)
	SaveSubmission(ctx context.Context, res *model.Result, answers []model.Answer) error
}

// GradingUserStore resolves the submitting candidate's account.
type GradingUserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
}

// CompletionNotifier queues a completion email for asynchronous delivery.
type CompletionNotifier interface {
	EnqueueCompletion(ctx context.Context, n model.CompletionNotice) error
}

// InvitationReconciler closes out a live invitation after submission.
type InvitationReconciler interface {
	ReconcileOnCompletion(ctx context.Context, candidateEmail string, testID int) error
}

// GradingService grades submissions and commits them exactly once.
type GradingService struct {
	tests       GradingTestStore
	questions   GradingQuestionStore
	results     GradingResultStore
	users       GradingUserStore
	invitations InvitationReconciler
	notifier    CompletionNotifier
}

// NewGradingService creates a new GradingService.
func NewGradingService(tests GradingTestStore, questions GradingQuestionStore, results GradingResultStore, users GradingUserStore, invitations InvitationReconciler, notifier CompletionNotifier) *GradingService {
	return &GradingService{
		tests:       tests,
		questions:   questions,
		results:     results,
		users:       users,
		invitations: invitations,
		notifier:    notifier,
	}
}

// Submit grades a candidate's answers and commits the result, answer rows,
// and session completion atomically. A candidate can complete each test at
// most once: a concurrent duplicate loses on the results unique constraint
// and surfaces as ErrConflict, never as a second result.
func (s *GradingService) Submit(ctx context.Context, p Principal, testID int, req *model.SubmitTestRequest) (*model.Submission, error) {
	if p.Role != model.RoleCandidate {
		return nil, fmt.Errorf("test %d: only candidates may submit: %w", testID, ErrForbidden)
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
	if len(questions) == 0 {
		return nil, fmt.Errorf("test %d has no questions: %w", testID, ErrInvalidInput)
	}

	correct, autoTotal, graded := gradeAnswers(p.ID, questions, req.Answers)
	score := computeScore(correct, autoTotal)

	result := &model.Result{
		CandidateID:    p.ID,
		TestID:         testID,
		TotalQuestions: autoTotal,
		CorrectAnswers: correct,
		Score:          score,
		Remarks:        calculateRemarks(score),
	}
	if err := s.results.SaveSubmission(ctx, result, graded); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("test %d already submitted: %w", testID, ErrConflict)
		}
		return nil, fmt.Errorf("save submission: %w", err)
	}

	// Post-commit work is best-effort: the result is durable regardless.
	s.afterSubmit(ctx, p, test, result)

	return &model.Submission{
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: result.CorrectAnswers,
		Remarks:        result.Remarks,
	}, nil
}

func (s *GradingService) afterSubmit(ctx context.Context, p Principal, test *model.Test, result *model.Result) {
	if err := s.invitations.ReconcileOnCompletion(ctx, p.Email, test.ID); err != nil {
		log.Error().Err(err).Int("test_id", test.ID).Str("email", p.Email).Msg("invitation reconcile failed")
	}

	name := p.Email
	if user, err := s.users.GetByID(ctx, p.ID); err == nil {
		name = user.Name
	}
	notice := model.CompletionNotice{
		CandidateEmail: p.Email,
		CandidateName:  name,
		TestTitle:      test.Title,
		Score:          result.Score,
		Remarks:        result.Remarks,
	}
	if err := s.notifier.EnqueueCompletion(ctx, notice); err != nil {
		log.Error().Err(err).Int("test_id", test.ID).Str("email", p.Email).Msg("completion notice enqueue failed")
	}
}

// gradeAnswers scores every auto-graded question by exact comparison against
// its key and records one answer row per question, answered or not.
func gradeAnswers(candidateID int, questions []model.Question, answers map[string]string) (correct, autoTotal int, graded []model.Answer) {
	graded = make([]model.Answer, 0, len(questions))
	for _, q := range questions {
		given := answers[strconv.Itoa(q.ID)]

		isCorrect := false
		if q.QuestionType.AutoGraded() {
			autoTotal++
			isCorrect = answerMatches(given, q.CorrectAnswer)
			if isCorrect {
				correct++
			}
		}

		graded = append(graded, model.Answer{
			CandidateID: candidateID,
			QuestionID:  q.ID,
			Answer:      given,
			IsCorrect:   isCorrect,
		})
	}
	return correct, autoTotal, graded
}

// answerMatches compares the submitted value against the key byte for byte.
// No trimming or case folding: "A " does not match "A".
func answerMatches(given, key string) bool {
	return given != "" && given == key
}

// computeScore returns the percentage of correct auto-graded answers,
// rounded half up. A test with no auto-graded questions scores zero.
func computeScore(correct, autoTotal int) int {
	if autoTotal == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(autoTotal) * 100))
}

// calculateRemarks maps a score to its qualitative tier.
func calculateRemarks(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 75:
		return "Very Good"
	case score >= 60:
		return "Good"
	case score >= 50:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}
