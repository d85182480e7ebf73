package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrmmllrs/test-app-backend/internal/model"
)

type fakeSessionStore struct {
	sessions  map[[2]int]*model.Session
	completed map[[2]int]bool
	upserts   int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[[2]int]*model.Session{}, completed: map[[2]int]bool{}}
}

func (f *fakeSessionStore) GetByCandidateTest(_ context.Context, candidateID, testID int) (*model.Session, error) {
	s, ok := f.sessions[[2]int{candidateID, testID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeSessionStore) UpsertProgress(_ context.Context, candidateID, testID int, answers json.RawMessage, timeRemaining int) (*model.Session, error) {
	key := [2]int{candidateID, testID}
	if f.completed[key] {
		return nil, pgx.ErrNoRows
	}
	f.upserts++
	s := &model.Session{
		CandidateID:   candidateID,
		TestID:        testID,
		Status:        model.SessionStatusInProgress,
		SavedAnswers:  answers,
		TimeRemaining: &timeRemaining,
	}
	f.sessions[key] = s
	return s, nil
}

type fakeSessionResults struct {
	results map[[2]int]*model.Result
}

func (f *fakeSessionResults) GetByCandidateTest(_ context.Context, candidateID, testID int) (*model.Result, error) {
	r, ok := f.results[[2]int{candidateID, testID}]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}

func newSessionFixture() (*SessionService, *fakeSessionStore, *fakeSessionResults) {
	sessions := newFakeSessionStore()
	results := &fakeSessionResults{results: map[[2]int]*model.Result{}}
	return NewSessionService(sessions, results), sessions, results
}

func intPtr(n int) *int { return &n }

func TestGetStatusNotStarted(t *testing.T) {
	svc, _, _ := newSessionFixture()

	state, err := svc.GetStatus(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusNotStarted, state.Status)
	assert.Nil(t, state.Result)
}

func TestGetStatusInProgress(t *testing.T) {
	svc, sessions, _ := newSessionFixture()
	saved := json.RawMessage(`{"10":"A"}`)
	sessions.sessions[[2]int{3, 1}] = &model.Session{
		CandidateID:   3,
		TestID:        1,
		Status:        model.SessionStatusInProgress,
		StartTime:     time.Now(),
		SavedAnswers:  saved,
		TimeRemaining: intPtr(900),
	}

	state, err := svc.GetStatus(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusInProgress, state.Status)
	assert.Equal(t, saved, state.SavedAnswers)
	assert.Equal(t, 900, *state.TimeRemaining)
}

func TestGetStatusResultOutranksStaleSession(t *testing.T) {
	svc, sessions, results := newSessionFixture()

	// Stale in_progress row left behind by a crash after the result committed.
	sessions.sessions[[2]int{3, 1}] = &model.Session{
		CandidateID: 3, TestID: 1, Status: model.SessionStatusInProgress,
		SavedAnswers: json.RawMessage(`{"10":"A"}`), TimeRemaining: intPtr(10),
	}
	results.results[[2]int{3, 1}] = &model.Result{CandidateID: 3, TestID: 1, Score: 80, Remarks: "Very Good"}

	state, err := svc.GetStatus(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusCompleted, state.Status)
	require.NotNil(t, state.Result)
	assert.Equal(t, 80, state.Result.Score)
	assert.Nil(t, state.SavedAnswers, "no resume payload once completed")
}

func TestSaveProgressValidation(t *testing.T) {
	svc, sessions, _ := newSessionFixture()

	_, err := svc.SaveProgress(context.Background(), 3, 1, &model.SaveProgressRequest{
		Answers: map[string]string{},
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "missing time_remaining")

	_, err = svc.SaveProgress(context.Background(), 3, 1, &model.SaveProgressRequest{
		Answers:       map[string]string{},
		TimeRemaining: intPtr(-1),
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "negative time_remaining")

	assert.Zero(t, sessions.upserts)
}

func TestSaveProgressUpserts(t *testing.T) {
	svc, sessions, _ := newSessionFixture()

	sess, err := svc.SaveProgress(context.Background(), 3, 1, &model.SaveProgressRequest{
		Answers:       map[string]string{"10": "A"},
		TimeRemaining: intPtr(600),
	})
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusInProgress, sess.Status)
	assert.JSONEq(t, `{"10":"A"}`, string(sess.SavedAnswers))

	// Zero is a valid remaining time (candidate at the buzzer).
	_, err = svc.SaveProgress(context.Background(), 3, 1, &model.SaveProgressRequest{
		Answers:       map[string]string{"10": "A", "11": "B"},
		TimeRemaining: intPtr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sessions.upserts)
}

func TestSaveProgressRefusedAfterCompletion(t *testing.T) {
	svc, sessions, results := newSessionFixture()

	t.Run("result exists", func(t *testing.T) {
		results.results[[2]int{3, 1}] = &model.Result{CandidateID: 3, TestID: 1}
		_, err := svc.SaveProgress(context.Background(), 3, 1, &model.SaveProgressRequest{
			Answers: map[string]string{}, TimeRemaining: intPtr(5),
		})
		assert.ErrorIs(t, err, ErrAlreadyCompleted)
	})

	t.Run("session row already completed", func(t *testing.T) {
		sessions.completed[[2]int{4, 1}] = true
		_, err := svc.SaveProgress(context.Background(), 4, 1, &model.SaveProgressRequest{
			Answers: map[string]string{}, TimeRemaining: intPtr(5),
		})
		assert.ErrorIs(t, err, ErrAlreadyCompleted)
	})
}
