package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// ---- fakes ----

type fakeTestStore struct {
	tests map[int]*model.Test
}

func (f *fakeTestStore) GetByID(_ context.Context, id int) (*model.Test, error) {
	t, ok := f.tests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

type fakeQuestionStore struct {
	questions map[int][]model.Question
}

func (f *fakeQuestionStore) ListByTest(_ context.Context, testID int) ([]model.Question, error) {
	return f.questions[testID], nil
}

type fakeResultStore struct {
	existing  map[[2]int]bool
	saved     *model.Result
	savedRows []model.Answer
	saveErr   error
}

func (f *fakeResultStore) Has(_ context.Context, candidateID, testID int) (bool, error) {
	return f.existing[[2]int{candidateID, testID}], nil
}

func (f *fakeResultStore) SaveSubmission(_ context.Context, res *model.Result, answers []model.Answer) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = res
	f.savedRows = answers
	return nil
}

type fakeUserStore struct {
	users map[int]*model.User
}

func (f *fakeUserStore) GetByID(_ context.Context, id int) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

type fakeReconciler struct {
	calls []string
}

func (f *fakeReconciler) ReconcileOnCompletion(_ context.Context, email string, _ int) error {
	f.calls = append(f.calls, email)
	return nil
}

type fakeNotifier struct {
	notices []model.CompletionNotice
	updates []model.MonitorUpdate
}

func (f *fakeNotifier) EnqueueCompletion(_ context.Context, n model.CompletionNotice) error {
	f.notices = append(f.notices, n)
	return nil
}

func (f *fakeNotifier) PublishMonitorUpdate(_ context.Context, u model.MonitorUpdate) error {
	f.updates = append(f.updates, u)
	return nil
}

// ---- fixtures ----

func newGradingFixture() (*GradingService, *fakeResultStore, *fakeReconciler, *fakeNotifier) {
	tests := &fakeTestStore{tests: map[int]*model.Test{
		1: {ID: 1, Title: "Go Basics", CreatedBy: 7},
	}}
	questions := &fakeQuestionStore{questions: map[int][]model.Question{
		1: {
			{ID: 10, TestID: 1, QuestionType: model.QuestionTypeMultipleChoice, CorrectAnswer: "A"},
			{ID: 11, TestID: 1, QuestionType: model.QuestionTypeMultipleChoice, CorrectAnswer: "B"},
		},
	}}
	results := &fakeResultStore{existing: map[[2]int]bool{}}
	users := &fakeUserStore{users: map[int]*model.User{
		3: {ID: 3, Name: "Casey", Email: "casey@example.com"},
	}}
	reconciler := &fakeReconciler{}
	notifier := &fakeNotifier{}
	svc := NewGradingService(tests, questions, results, users, reconciler, notifier)
	return svc, results, reconciler, notifier
}

var candidate = Principal{ID: 3, Email: "casey@example.com", Role: model.RoleCandidate}

// ---- tests ----

func TestSubmitGradesAndCommits(t *testing.T) {
	svc, results, reconciler, notifier := newGradingFixture()

	sub, err := svc.Submit(context.Background(), candidate, 1, &model.SubmitTestRequest{
		Answers: map[string]string{"10": "A", "11": "C"},
	})
	require.NoError(t, err)

	assert.Equal(t, 50, sub.Score)
	assert.Equal(t, 1, sub.CorrectAnswers)
	assert.Equal(t, 2, sub.TotalQuestions)
	assert.Equal(t, "Fair", sub.Remarks)

	require.NotNil(t, results.saved)
	assert.Equal(t, 3, results.saved.CandidateID)
	assert.Len(t, results.savedRows, 2)

	assert.Equal(t, []string{"casey@example.com"}, reconciler.calls)
	require.Len(t, notifier.notices, 1)
	assert.Equal(t, "Casey", notifier.notices[0].CandidateName)
	assert.Equal(t, 50, notifier.notices[0].Score)
}

func TestSubmitRequiresCandidateRole(t *testing.T) {
	svc, results, _, notifier := newGradingFixture()
	employer := Principal{ID: 7, Email: "boss@example.com", Role: model.RoleEmployer}

	_, err := svc.Submit(context.Background(), employer, 1, &model.SubmitTestRequest{
		Answers: map[string]string{"10": "A"},
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, results.saved)
	assert.Empty(t, notifier.notices)
}

func TestSubmitRejectsRepeatSubmission(t *testing.T) {
	svc, results, _, notifier := newGradingFixture()
	results.existing[[2]int{3, 1}] = true

	_, err := svc.Submit(context.Background(), candidate, 1, &model.SubmitTestRequest{Answers: map[string]string{}})
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Nil(t, results.saved)
	assert.Empty(t, notifier.notices)
}

func TestSubmitConcurrentDuplicateLosesOnConstraint(t *testing.T) {
	svc, results, _, notifier := newGradingFixture()
	results.saveErr = &pgconn.PgError{Code: "23505", ConstraintName: "results_candidate_id_test_id_key"}

	_, err := svc.Submit(context.Background(), candidate, 1, &model.SubmitTestRequest{
		Answers: map[string]string{"10": "A"},
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, notifier.notices)
}

func TestSubmitUnknownTest(t *testing.T) {
	svc, _, _, _ := newGradingFixture()

	_, err := svc.Submit(context.Background(), candidate, 99, &model.SubmitTestRequest{Answers: map[string]string{}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitRejectsEmptyTest(t *testing.T) {
	svc, _, _, _ := newGradingFixture()
	svc.questions = &fakeQuestionStore{questions: map[int][]model.Question{1: {}}}

	_, err := svc.Submit(context.Background(), candidate, 1, &model.SubmitTestRequest{Answers: map[string]string{}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGradeAnswersMixedTypes(t *testing.T) {
	questions := []model.Question{
		{ID: 1, QuestionType: model.QuestionTypeMultipleChoice, CorrectAnswer: "A"},
		{ID: 2, QuestionType: model.QuestionTypeTrueFalse, CorrectAnswer: "True"},
		{ID: 3, QuestionType: model.QuestionTypeEssay},
		{ID: 4, QuestionType: model.QuestionTypeShortAnswer},
	}
	answers := map[string]string{"1": "A", "2": "False", "3": "free text", "4": ""}

	correct, autoTotal, graded := gradeAnswers(9, questions, answers)
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, autoTotal, "only auto-graded types count toward the denominator")
	require.Len(t, graded, 4, "every question gets an answer row")

	assert.True(t, graded[0].IsCorrect)
	assert.False(t, graded[1].IsCorrect)
	assert.False(t, graded[2].IsCorrect, "essay answers are never auto-marked correct")
}

func TestGradeAnswersCompareExactly(t *testing.T) {
	questions := []model.Question{
		{ID: 1, QuestionType: model.QuestionTypeMultipleChoice, CorrectAnswer: "A"},
	}
	cases := []struct {
		name  string
		given string
		want  int
	}{
		{"exact match", "A", 1},
		{"trailing space is wrong", "A ", 0},
		{"leading space is wrong", " A", 0},
		{"case differs", "a", 0},
		{"unanswered", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			correct, _, _ := gradeAnswers(9, questions, map[string]string{"1": tc.given})
			assert.Equal(t, tc.want, correct)
		})
	}
}

func TestComputeScore(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 0, 0}, // no auto-graded questions
		{1, 2, 50},
		{2, 3, 67}, // rounds half up
		{1, 3, 33},
		{3, 3, 100},
		{0, 5, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, computeScore(tc.correct, tc.total), "computeScore(%d, %d)", tc.correct, tc.total)
	}
}

func TestCalculateRemarks(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, "Excellent"},
		{90, "Excellent"},
		{89, "Very Good"},
		{75, "Very Good"},
		{74, "Good"},
		{60, "Good"},
		{59, "Fair"},
		{50, "Fair"},
		{49, "Needs Improvement"},
		{0, "Needs Improvement"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, calculateRemarks(tc.score), "calculateRemarks(%d)", tc.score)
	}
}
