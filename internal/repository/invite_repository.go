package repository

import (
	"context"
	"database/sql"

	"github.com/replyhub/identity-api/internal/models"
)

type InviteRepository interface {
	CreateInvite(ctx context.Context, invite models.Invite) (models.Invite, error)
	GetInviteByToken(ctx context.Context, token string) (models.Invite, error)
	// FindActiveInviteByEmail returns any pending or accepted invite for the
	// email; invites are retained forever, so this doubles as the duplicate
	// check at issue time.
	FindActiveInviteByEmail(ctx context.Context, email string) (models.Invite, error)
	// MarkInviteAccepted flips pending to accepted. Returns sql.ErrNoRows if
	// the invite was not pending, which idempotent callers absorb.
	MarkInviteAccepted(ctx context.Context, inviteID string) (models.Invite, error)
	ListInvitesByWorkspace(ctx context.Context, workspaceID string) ([]models.Invite, error)
}

type inviteRepository struct {
	db *sql.DB
}

func NewInviteRepository(db *sql.DB) InviteRepository {
	return &inviteRepository{db: db}
}

const inviteColumns = `id, email, role, workspace_id, invited_by, token, status, expires_at, created_at, accepted_at`

func (r *inviteRepository) CreateInvite(ctx context.Context, invite models.Invite) (models.Invite, error) {
	const query = `
		INSERT INTO staff.invites (email, role, workspace_id, invited_by, token, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
		RETURNING ` + inviteColumns + `;
	`
	return scanInvite(r.db.QueryRowContext(ctx, query,
		invite.Email,
		string(invite.Role),
		invite.WorkspaceID,
		invite.InvitedBy,
		invite.Token,
		invite.ExpiresAt,
	))
}

func (r *inviteRepository) GetInviteByToken(ctx context.Context, token string) (models.Invite, error) {
	const query = `
		SELECT ` + inviteColumns + `
		FROM staff.invites
		WHERE token = $1;
	`
	return scanInvite(r.db.QueryRowContext(ctx, query, token))
}

func (r *inviteRepository) FindActiveInviteByEmail(ctx context.Context, email string) (models.Invite, error) {
	const query = `
		SELECT ` + inviteColumns + `
		FROM staff.invites
		WHERE email = $1 AND status IN ('pending', 'accepted')
		ORDER BY created_at DESC
		LIMIT 1;
	`
	return scanInvite(r.db.QueryRowContext(ctx, query, email))
}

func (r *inviteRepository) MarkInviteAccepted(ctx context.Context, inviteID string) (models.Invite, error) {
	const query = `
		UPDATE staff.invites
		SET status = 'accepted', accepted_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + inviteColumns + `;
	`
	return scanInvite(r.db.QueryRowContext(ctx, query, inviteID))
}

func (r *inviteRepository) ListInvitesByWorkspace(ctx context.Context, workspaceID string) ([]models.Invite, error) {
	const query = `
		SELECT ` + inviteColumns + `
		FROM staff.invites
		WHERE workspace_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []models.Invite
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invites, nil
}

func scanInvite(row rowScanner) (models.Invite, error) {
	var (
		invite      models.Invite
		role        string
		workspaceID sql.NullString
		status      string
		acceptedAt  sql.NullTime
	)
	err := row.Scan(
		&invite.ID,
		&invite.Email,
		&role,
		&workspaceID,
		&invite.InvitedBy,
		&invite.Token,
		&status,
		&invite.ExpiresAt,
		&invite.CreatedAt,
		&acceptedAt,
	)
	if err != nil {
		return models.Invite{}, err
	}

	invite.Role = models.Role(role)
	invite.Status = models.InviteStatus(status)
	if workspaceID.Valid {
		invite.WorkspaceID = &workspaceID.String
	}
	if acceptedAt.Valid {
		invite.AcceptedAt = &acceptedAt.Time
	}
	return invite, nil
}
