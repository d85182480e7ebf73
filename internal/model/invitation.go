package model

import "time"

// InvitationStatus enumerates invitation states. Transitions are monotonic:
// once completed or expired an invitation never regresses.
type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "pending"
	InvitationStatusAccepted  InvitationStatus = "accepted"
	InvitationStatusCompleted InvitationStatus = "completed"
	InvitationStatusExpired   InvitationStatus = "expired"
)

// Invitation is a single-use, token-addressed invite binding a candidate
// email to a test. The token is the only externally valid reference.
type Invitation struct {
	ID             int              `json:"id"`
	TestID         int              `json:"test_id"`
	CandidateEmail string           `json:"candidate_email"`
	CandidateName  string           `json:"candidate_name"`
	InvitedBy      int              `json:"invited_by"`
	InvitedByName  string           `json:"invited_by_name,omitempty"`
	Token          string           `json:"-"`
	Status         InvitationStatus `json:"status"`
	InvitedAt      time.Time        `json:"invited_at"`
	AcceptedAt     *time.Time       `json:"accepted_at,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	ExpiresAt      time.Time        `json:"expires_at"`
}

// InvitationView is the denormalized landing-page payload returned when a
// candidate resolves a token: everything needed to render without a second
// round trip.
type InvitationView struct {
	ID              int       `json:"id"`
	TestID          int       `json:"test_id"`
	TestTitle       string    `json:"test_title"`
	TestDescription string    `json:"test_description,omitempty"`
	TimeLimit       int       `json:"time_limit"`
	QuestionCount   int       `json:"question_count"`
	CandidateName   string    `json:"candidate_name"`
	CandidateEmail  string    `json:"candidate_email"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// InviteCandidate identifies one recipient in a batch invitation request.
type InviteCandidate struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,min=1,max=255"`
}

// SendInvitationsRequest is the payload for issuing invitations.
type SendInvitationsRequest struct {
	TestID     int               `json:"test_id" binding:"required"`
	Candidates []InviteCandidate `json:"candidates" binding:"required,min=1,dive"`
}

// InvitationOutcome reports the per-candidate result of a batch issue.
type InvitationOutcome struct {
	Email        string `json:"email"`
	Success      bool   `json:"success"`
	InvitationID int    `json:"invitation_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// VerifyAccessRequest gates test-taking by invitation. Token is optional:
// absence means the open, direct-access path.
type VerifyAccessRequest struct {
	InvitationToken string `json:"invitation_token" binding:"omitempty"`
	TestID          int    `json:"test_id" binding:"required"`
}
