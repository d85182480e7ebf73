package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrmmllrs/test-app-backend/internal/model"
)

// InvitationRepository handles test invitation data access. Status updates
// are guarded in SQL so transitions stay monotonic under concurrent writers.
type InvitationRepository struct {
	pool *pgxpool.Pool
}

// NewInvitationRepository creates a new InvitationRepository.
func NewInvitationRepository(pool *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{pool: pool}
}

const invitationColumns = `ti.id, ti.test_id, ti.candidate_email, ti.candidate_name, ti.invited_by,
	ti.invitation_token, ti.status, ti.invited_at, ti.accepted_at, ti.completed_at, ti.expires_at`

func scanInvitation(row pgx.Row) (*model.Invitation, error) {
	inv := &model.Invitation{}
	err := row.Scan(&inv.ID, &inv.TestID, &inv.CandidateEmail, &inv.CandidateName, &inv.InvitedBy,
		&inv.Token, &inv.Status, &inv.InvitedAt, &inv.AcceptedAt, &inv.CompletedAt, &inv.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Create inserts a new pending invitation and sets its generated ID.
func (r *InvitationRepository) Create(ctx context.Context, inv *model.Invitation) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO test_invitations
		   (test_id, candidate_email, candidate_name, invited_by, invitation_token, status, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, invited_at`,
		inv.TestID, inv.CandidateEmail, inv.CandidateName, inv.InvitedBy,
		inv.Token, model.InvitationStatusPending, inv.ExpiresAt,
	).Scan(&inv.ID, &inv.InvitedAt)
}

// GetByToken retrieves an invitation by its opaque token.
func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	return scanInvitation(r.pool.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM test_invitations ti WHERE ti.invitation_token = $1`, token))
}

// GetByID retrieves an invitation with its test and inviter denormalized.
func (r *InvitationRepository) GetByID(ctx context.Context, id int) (*model.Invitation, error) {
	inv := &model.Invitation{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+invitationColumns+`, u.name
		 FROM test_invitations ti
		 JOIN users u ON ti.invited_by = u.id
		 WHERE ti.id = $1`, id,
	).Scan(&inv.ID, &inv.TestID, &inv.CandidateEmail, &inv.CandidateName, &inv.InvitedBy,
		&inv.Token, &inv.Status, &inv.InvitedAt, &inv.AcceptedAt, &inv.CompletedAt, &inv.ExpiresAt,
		&inv.InvitedByName)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// MarkExpired flips a non-terminal invitation to expired. Zero rows affected
// means another writer already moved it, which is fine: expiry is idempotent.
func (r *InvitationRepository) MarkExpired(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE test_invitations
		 SET status = $1
		 WHERE id = $2 AND status NOT IN ($3, $4)`,
		model.InvitationStatusExpired, id,
		model.InvitationStatusCompleted, model.InvitationStatusExpired)
	return err
}

// MarkAccepted moves a pending invitation to accepted. Resolves while already
// accepted are no-ops by the status guard.
func (r *InvitationRepository) MarkAccepted(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE test_invitations
		 SET status = $1, accepted_at = NOW()
		 WHERE id = $2 AND status = $3`,
		model.InvitationStatusAccepted, id, model.InvitationStatusPending)
	return err
}

// CompleteByCandidateTest stamps the matching live invitation completed.
// Idempotent: no matching row is not an error.
func (r *InvitationRepository) CompleteByCandidateTest(ctx context.Context, candidateEmail string, testID int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE test_invitations
		 SET status = $1, completed_at = NOW()
		 WHERE candidate_email = $2 AND test_id = $3 AND status IN ($4, $5)`,
		model.InvitationStatusCompleted, candidateEmail, testID,
		model.InvitationStatusPending, model.InvitationStatusAccepted)
	return err
}

// ListByTest retrieves a test's invitations with inviter names, newest first.
func (r *InvitationRepository) ListByTest(ctx context.Context, testID int) ([]model.Invitation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+invitationColumns+`, u.name
		 FROM test_invitations ti
		 JOIN users u ON ti.invited_by = u.id
		 WHERE ti.test_id = $1
		 ORDER BY ti.invited_at DESC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []model.Invitation
	for rows.Next() {
		var inv model.Invitation
		if err := rows.Scan(&inv.ID, &inv.TestID, &inv.CandidateEmail, &inv.CandidateName, &inv.InvitedBy,
			&inv.Token, &inv.Status, &inv.InvitedAt, &inv.AcceptedAt, &inv.CompletedAt, &inv.ExpiresAt,
			&inv.InvitedByName); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// Delete cancels an invitation outright.
func (r *InvitationRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM test_invitations WHERE id = $1`, id)
	return err
}
