package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrmmllrs/test-app-backend/internal/config"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

type fakeInvitationStore struct {
	byToken   map[string]*model.Invitation
	byID      map[int]*model.Invitation
	nextID    int
	expired   []int
	accepted  []int
	completed []string
	deleted   []int
}

func newFakeInvitationStore() *fakeInvitationStore {
	return &fakeInvitationStore{
		byToken: map[string]*model.Invitation{},
		byID:    map[int]*model.Invitation{},
		nextID:  100,
	}
}

func (f *fakeInvitationStore) add(inv *model.Invitation) {
	f.byToken[inv.Token] = inv
	f.byID[inv.ID] = inv
}

func (f *fakeInvitationStore) Create(_ context.Context, inv *model.Invitation) error {
	f.nextID++
	inv.ID = f.nextID
	inv.InvitedAt = time.Now()
	f.add(inv)
	return nil
}

func (f *fakeInvitationStore) GetByToken(_ context.Context, token string) (*model.Invitation, error) {
	inv, ok := f.byToken[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvitationStore) GetByID(_ context.Context, id int) (*model.Invitation, error) {
	inv, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvitationStore) MarkExpired(_ context.Context, id int) error {
	f.expired = append(f.expired, id)
	f.byID[id].Status = model.InvitationStatusExpired
	return nil
}

func (f *fakeInvitationStore) MarkAccepted(_ context.Context, id int) error {
	f.accepted = append(f.accepted, id)
	f.byID[id].Status = model.InvitationStatusAccepted
	return nil
}

func (f *fakeInvitationStore) CompleteByCandidateTest(_ context.Context, email string, _ int) error {
	f.completed = append(f.completed, email)
	return nil
}

func (f *fakeInvitationStore) ListByTest(_ context.Context, testID int) ([]model.Invitation, error) {
	var out []model.Invitation
	for _, inv := range f.byID {
		if inv.TestID == testID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationStore) Delete(_ context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeMailer struct {
	invitations []string
	reminders   []string
	failNext    bool
}

func (f *fakeMailer) SendInvitation(inv *model.Invitation, _ string) error {
	if f.failNext {
		f.failNext = false
		return assert.AnError
	}
	f.invitations = append(f.invitations, inv.CandidateEmail)
	return nil
}

func (f *fakeMailer) SendReminder(inv *model.Invitation, _ string) error {
	f.reminders = append(f.reminders, inv.CandidateEmail)
	return nil
}

func newInvitationFixture() (*InvitationService, *fakeInvitationStore, *fakeMailer) {
	store := newFakeInvitationStore()
	tests := &fakeTestStore{tests: map[int]*model.Test{
		1: {ID: 1, Title: "Go Basics", CreatedBy: 7, TimeLimit: 30, QuestionCount: 4},
	}}
	mail := &fakeMailer{}
	cfg := &config.Config{InvitationTTL: 7 * 24 * time.Hour}
	return NewInvitationService(cfg, store, tests, mail), store, mail
}

var employer = Principal{ID: 7, Email: "hr@example.com", Role: model.RoleEmployer}

func liveInvitation(store *fakeInvitationStore, token string) *model.Invitation {
	inv := &model.Invitation{
		ID:             1,
		TestID:         1,
		CandidateEmail: "casey@example.com",
		CandidateName:  "Casey",
		InvitedBy:      7,
		Token:          token,
		Status:         model.InvitationStatusPending,
		ExpiresAt:      time.Now().Add(24 * time.Hour),
	}
	store.add(inv)
	return inv
}

func TestSendIssuesPerCandidateOutcomes(t *testing.T) {
	svc, store, mail := newInvitationFixture()
	mail.failNext = true // first candidate's email bounces

	outcomes, err := svc.Send(context.Background(), employer, &model.SendInvitationsRequest{
		TestID: 1,
		Candidates: []model.InviteCandidate{
			{Email: "a@example.com", Name: "A"},
			{Email: "b@example.com", Name: "B"},
		},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.True(t, outcomes[0].Success, "invitation persists even when the email fails")
	assert.NotEmpty(t, outcomes[0].Error)
	assert.True(t, outcomes[1].Success)
	assert.Empty(t, outcomes[1].Error)

	// Tokens are 32 random bytes hex encoded.
	for _, inv := range store.byID {
		assert.Len(t, inv.Token, 64)
	}
	assert.Equal(t, []string{"b@example.com"}, mail.invitations)
}

func TestSendForbiddenForNonOwner(t *testing.T) {
	svc, _, _ := newInvitationFixture()
	other := Principal{ID: 99, Email: "other@example.com", Role: model.RoleEmployer}

	_, err := svc.Send(context.Background(), other, &model.SendInvitationsRequest{
		TestID:     1,
		Candidates: []model.InviteCandidate{{Email: "a@example.com", Name: "A"}},
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestResolveReturnsLandingView(t *testing.T) {
	svc, store, _ := newInvitationFixture()
	liveInvitation(store, "tok")

	view, err := svc.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", view.TestTitle)
	assert.Equal(t, 4, view.QuestionCount)
	assert.Equal(t, "casey@example.com", view.CandidateEmail)

	// First resolve moves the invitation to accepted; later ones are no-ops.
	assert.Equal(t, []int{1}, store.accepted)
	_, err = svc.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, store.accepted, 1)
}

func TestResolveLazilyExpires(t *testing.T) {
	svc, store, _ := newInvitationFixture()
	inv := liveInvitation(store, "tok")
	inv.ExpiresAt = time.Now().Add(-time.Minute)

	_, err := svc.Resolve(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, []int{1}, store.expired, "past-deadline invitation is marked expired on read")

	// Second resolve hits the terminal status, no second write.
	_, err = svc.Resolve(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrExpired)
	assert.Len(t, store.expired, 1)
}

func TestResolveUnknownToken(t *testing.T) {
	svc, _, _ := newInvitationFixture()
	_, err := svc.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveCompletedInvitation(t *testing.T) {
	svc, store, _ := newInvitationFixture()
	inv := liveInvitation(store, "tok")
	inv.Status = model.InvitationStatusCompleted

	_, err := svc.Resolve(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestAcceptRequiresMatchingEmail(t *testing.T) {
	svc, store, _ := newInvitationFixture()
	liveInvitation(store, "tok")

	wrong := Principal{ID: 5, Email: "imposter@example.com", Role: model.RoleCandidate}
	_, err := svc.Accept(context.Background(), wrong, "tok")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, store.accepted)
}

func TestAcceptIsIdempotent(t *testing.T) {
	svc, store, _ := newInvitationFixture()
	liveInvitation(store, "tok")
	p := Principal{ID: 5, Email: "CASEY@example.com", Role: model.RoleCandidate} // case-insensitive match

	inv, err := svc.Accept(context.Background(), p, "tok")
	require.NoError(t, err)
	assert.Equal(t, model.InvitationStatusAccepted, inv.Status)
	assert.Equal(t, []int{1}, store.accepted)

	// Accepting again is a no-op, not an error.
	_, err = svc.Accept(context.Background(), p, "tok")
	require.NoError(t, err)
	assert.Len(t, store.accepted, 1)
}

func TestVerifyAccess(t *testing.T) {
	svc, store, _ := newInvitationFixture()
	liveInvitation(store, "tok")
	p := Principal{ID: 5, Email: "casey@example.com", Role: model.RoleCandidate}

	t.Run("empty token is the open path", func(t *testing.T) {
		assert.NoError(t, svc.VerifyAccess(context.Background(), p, &model.VerifyAccessRequest{TestID: 1}))
	})

	t.Run("matching invitation passes", func(t *testing.T) {
		req := &model.VerifyAccessRequest{InvitationToken: "tok", TestID: 1}
		assert.NoError(t, svc.VerifyAccess(context.Background(), p, req))
	})

	t.Run("wrong test is rejected", func(t *testing.T) {
		req := &model.VerifyAccessRequest{InvitationToken: "tok", TestID: 2}
		assert.ErrorIs(t, svc.VerifyAccess(context.Background(), p, req), ErrInvalidInput)
	})

	t.Run("wrong email is rejected", func(t *testing.T) {
		other := Principal{ID: 6, Email: "other@example.com", Role: model.RoleCandidate}
		req := &model.VerifyAccessRequest{InvitationToken: "tok", TestID: 1}
		assert.ErrorIs(t, svc.VerifyAccess(context.Background(), other, req), ErrForbidden)
	})
}

func TestRemindRejectsDeadInvitations(t *testing.T) {
	svc, store, mail := newInvitationFixture()
	inv := liveInvitation(store, "tok")

	require.NoError(t, svc.Remind(context.Background(), employer, inv.ID))
	assert.Equal(t, []string{"casey@example.com"}, mail.reminders)

	inv.Status = model.InvitationStatusCompleted
	assert.ErrorIs(t, svc.Remind(context.Background(), employer, inv.ID), ErrAlreadyCompleted)

	inv.Status = model.InvitationStatusPending
	inv.ExpiresAt = time.Now().Add(-time.Hour)
	assert.ErrorIs(t, svc.Remind(context.Background(), employer, inv.ID), ErrExpired)
}

func TestNewInvitationTokenIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 64; i++ {
		tok, err := newInvitationToken()
		require.NoError(t, err)
		require.Len(t, tok, 64)
		require.False(t, seen[tok])
		seen[tok] = true
	}
}
