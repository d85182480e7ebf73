package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/jrmmllrs/test-app-backend/internal/config"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// InvitationStore is the persistence surface InvitationService depends on.
type InvitationStore interface {
	Create(ctx context.Context, inv *model.Invitation) error
	GetByToken(ctx context.Context, token string) (*model.Invitation, error)
	GetByID(ctx context.Context, id int) (*model.Invitation, error)
	MarkExpired(ctx context.Context, id int) error
	MarkAccepted(ctx context.Context, id int) error
	CompleteByCandidateTest(ctx context.Context, candidateEmail string, testID int) error
	ListByTest(ctx context.Context, testID int) ([]model.Invitation, error)
	Delete(ctx context.Context, id int) error
}

// InvitationTestStore provides the test metadata invitations reference.
type InvitationTestStore interface {
	GetByID(ctx context.Context, id int) (*model.Test, error)
}

// InvitationMailer sends invitation emails. Sends are synchronous and
// best-effort: a failed send never rolls back the invitation.
type InvitationMailer interface {
	SendInvitation(inv *model.Invitation, testTitle string) error
	SendReminder(inv *model.Invitation, testTitle string) error
}

// InvitationService manages the invitation lifecycle: issuance, token
// resolution, acceptance, and access verification.
type InvitationService struct {
	cfg         *config.Config
	invitations InvitationStore
	tests       InvitationTestStore
	mailer      InvitationMailer
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(cfg *config.Config, invitations InvitationStore, tests InvitationTestStore, mailer InvitationMailer) *InvitationService {
	return &InvitationService{cfg: cfg, invitations: invitations, tests: tests, mailer: mailer}
}

// newInvitationToken returns a 64-char hex token from 32 random bytes.
func newInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Send issues one invitation per candidate and emails each a deep link.
// Issuance is independent per candidate: one failure never aborts the batch,
// and the outcome slice reports each candidate individually.
func (s *InvitationService) Send(ctx context.Context, p Principal, req *model.SendInvitationsRequest) ([]model.InvitationOutcome, error) {
	test, err := s.tests.GetByID(ctx, req.TestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("test %d: %w", req.TestID, ErrNotFound)
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	if !p.CanManage(test.CreatedBy) {
		return nil, fmt.Errorf("test %d not owned by caller: %w", test.ID, ErrForbidden)
	}

	outcomes := make([]model.InvitationOutcome, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		outcomes = append(outcomes, s.sendOne(ctx, p, test, c))
	}
	return outcomes, nil
}

func (s *InvitationService) sendOne(ctx context.Context, p Principal, test *model.Test, c model.InviteCandidate) model.InvitationOutcome {
	token, err := newInvitationToken()
	if err != nil {
		return model.InvitationOutcome{Email: c.Email, Error: "could not generate token"}
	}

	inv := &model.Invitation{
		TestID:         test.ID,
		CandidateEmail: strings.ToLower(strings.TrimSpace(c.Email)),
		CandidateName:  c.Name,
		InvitedBy:      p.ID,
		Token:          token,
		Status:         model.InvitationStatusPending,
		ExpiresAt:      time.Now().Add(s.cfg.InvitationTTL),
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		log.Error().Err(err).Str("email", c.Email).Int("test_id", test.ID).Msg("create invitation failed")
		return model.InvitationOutcome{Email: c.Email, Error: "could not create invitation"}
	}

	outcome := model.InvitationOutcome{Email: c.Email, Success: true, InvitationID: inv.ID}
	if err := s.mailer.SendInvitation(inv, test.Title); err != nil {
		log.Warn().Err(err).Str("email", c.Email).Int("invitation_id", inv.ID).Msg("invitation email failed")
		outcome.Error = "invitation created but email could not be sent"
	}
	return outcome
}

// Resolve looks up an invitation by token for the landing page. Expiry is
// applied lazily here: a pending or accepted invitation past its deadline is
// marked expired before the error is returned. The first resolve moves a
// pending invitation to accepted; resolves while accepted are no-ops.
func (s *InvitationService) Resolve(ctx context.Context, token string) (*model.InvitationView, error) {
	inv, err := s.getLive(ctx, token)
	if err != nil {
		return nil, err
	}

	if inv.Status == model.InvitationStatusPending {
		if err := s.invitations.MarkAccepted(ctx, inv.ID); err != nil {
			return nil, fmt.Errorf("mark accepted: %w", err)
		}
	}

	test, err := s.tests.GetByID(ctx, inv.TestID)
	if err != nil {
		return nil, fmt.Errorf("get test: %w", err)
	}

	return &model.InvitationView{
		ID:              inv.ID,
		TestID:          test.ID,
		TestTitle:       test.Title,
		TestDescription: test.Description,
		TimeLimit:       test.TimeLimit,
		QuestionCount:   test.QuestionCount,
		CandidateName:   inv.CandidateName,
		CandidateEmail:  inv.CandidateEmail,
		ExpiresAt:       inv.ExpiresAt,
	}, nil
}

// Accept transitions a pending invitation to accepted on behalf of the
// authenticated candidate. The candidate's account email must match the
// invited email. Accepting an already accepted invitation is a no-op.
func (s *InvitationService) Accept(ctx context.Context, p Principal, token string) (*model.Invitation, error) {
	inv, err := s.getLive(ctx, token)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(inv.CandidateEmail, p.Email) {
		return nil, fmt.Errorf("invitation addressed to another email: %w", ErrForbidden)
	}

	if inv.Status == model.InvitationStatusPending {
		if err := s.invitations.MarkAccepted(ctx, inv.ID); err != nil {
			return nil, fmt.Errorf("mark accepted: %w", err)
		}
		inv.Status = model.InvitationStatusAccepted
		now := time.Now()
		inv.AcceptedAt = &now
	}
	return inv, nil
}

// VerifyAccess checks whether the principal may start the given test via
// the supplied invitation token. An empty token is the open-access path and
// always passes; with a token, the invitation must reference the same test,
// be addressed to the principal, and still be live.
func (s *InvitationService) VerifyAccess(ctx context.Context, p Principal, req *model.VerifyAccessRequest) error {
	if req.InvitationToken == "" {
		return nil
	}

	inv, err := s.getLive(ctx, req.InvitationToken)
	if err != nil {
		return err
	}
	if inv.TestID != req.TestID {
		return fmt.Errorf("invitation is for a different test: %w", ErrInvalidInput)
	}
	if !strings.EqualFold(inv.CandidateEmail, p.Email) {
		return fmt.Errorf("invitation addressed to another email: %w", ErrForbidden)
	}
	return nil
}

// ReconcileOnCompletion marks the candidate's live invitation for a test as
// completed. Idempotent; called after a submission commits.
func (s *InvitationService) ReconcileOnCompletion(ctx context.Context, candidateEmail string, testID int) error {
	return s.invitations.CompleteByCandidateTest(ctx, strings.ToLower(candidateEmail), testID)
}

// ListByTest returns a test's invitations for its owner or an admin.
func (s *InvitationService) ListByTest(ctx context.Context, p Principal, testID int) ([]model.Invitation, error) {
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
	return s.invitations.ListByTest(ctx, testID)
}

// Remind re-sends the invitation email for a still-live invitation.
func (s *InvitationService) Remind(ctx context.Context, p Principal, invitationID int) error {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("invitation %d: %w", invitationID, ErrNotFound)
		}
		return fmt.Errorf("get invitation: %w", err)
	}

	test, err := s.tests.GetByID(ctx, inv.TestID)
	if err != nil {
		return fmt.Errorf("get test: %w", err)
	}
	if !p.CanManage(test.CreatedBy) {
		return fmt.Errorf("test %d not owned by caller: %w", test.ID, ErrForbidden)
	}
	if inv.Status == model.InvitationStatusCompleted {
		return fmt.Errorf("invitation %d: %w", invitationID, ErrAlreadyCompleted)
	}
	if inv.Status == model.InvitationStatusExpired || time.Now().After(inv.ExpiresAt) {
		return fmt.Errorf("invitation %d: %w", invitationID, ErrExpired)
	}

	if err := s.mailer.SendReminder(inv, test.Title); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}
	return nil
}

// Delete removes an invitation. Only the test owner or an admin may delete.
func (s *InvitationService) Delete(ctx context.Context, p Principal, invitationID int) error {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("invitation %d: %w", invitationID, ErrNotFound)
		}
		return fmt.Errorf("get invitation: %w", err)
	}

	test, err := s.tests.GetByID(ctx, inv.TestID)
	if err != nil {
		return fmt.Errorf("get test: %w", err)
	}
	if !p.CanManage(test.CreatedBy) {
		return fmt.Errorf("test %d not owned by caller: %w", test.ID, ErrForbidden)
	}
	return s.invitations.Delete(ctx, invitationID)
}

// getLive fetches by token and applies lazy expiry plus terminal-state
// checks. Returns the invitation only if it is pending or accepted and
// within its deadline.
func (s *InvitationService) getLive(ctx context.Context, token string) (*model.Invitation, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("invitation token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}

	switch inv.Status {
	case model.InvitationStatusCompleted:
		return nil, fmt.Errorf("invitation %d: %w", inv.ID, ErrAlreadyCompleted)
	case model.InvitationStatusExpired:
		return nil, fmt.Errorf("invitation %d: %w", inv.ID, ErrExpired)
	}

	if time.Now().After(inv.ExpiresAt) {
		if err := s.invitations.MarkExpired(ctx, inv.ID); err != nil {
			log.Error().Err(err).Int("invitation_id", inv.ID).Msg("lazy expiry failed")
		}
		return nil, fmt.Errorf("invitation %d: %w", inv.ID, ErrExpired)
	}
	return inv, nil
}
