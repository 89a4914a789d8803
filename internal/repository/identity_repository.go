package repository

import (
	"context"
	"database/sql"

	"github.com/replyhub/identity-api/internal/models"
)

type IdentityRepository interface {
	GetIdentityByEmail(ctx context.Context, email string) (models.Identity, error)
	GetIdentityByCredentialID(ctx context.Context, credentialID string) (models.Identity, error)
	// CreateIdentity inserts a minimal identity scoped to credential and email
	// only. Role stays "none"; Employee is the source of truth for employee
	// role and workspace.
	CreateIdentity(ctx context.Context, credentialID, email string) (models.Identity, error)
	// AttachCredential binds a credential to an identity that has none yet.
	// The binding is write-once; a second attach returns sql.ErrNoRows.
	AttachCredential(ctx context.Context, identityID, credentialID string) error
	// CreateAdminIdentity provisions an admin or super_admin identity and
	// claims its email in the same transaction.
	CreateAdminIdentity(ctx context.Context, email string, role models.Role, workspaceID *string) (models.Identity, error)
}

type identityRepository struct {
	db *sql.DB
}

func NewIdentityRepository(db *sql.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) GetIdentityByEmail(ctx context.Context, email string) (models.Identity, error) {
	const query = `
		SELECT id, email, credential_id, role, workspace_id, created_at, updated_at
		FROM staff.identities
		WHERE email = $1;
	`
	return r.scanIdentity(r.db.QueryRowContext(ctx, query, email))
}

func (r *identityRepository) GetIdentityByCredentialID(ctx context.Context, credentialID string) (models.Identity, error) {
	const query = `
		SELECT id, email, credential_id, role, workspace_id, created_at, updated_at
		FROM staff.identities
		WHERE credential_id = $1;
	`
	return r.scanIdentity(r.db.QueryRowContext(ctx, query, credentialID))
}

func (r *identityRepository) CreateIdentity(ctx context.Context, credentialID, email string) (models.Identity, error) {
	const query = `
		INSERT INTO staff.identities (credential_id, email, role)
		VALUES ($1, $2, 'none')
		RETURNING id, email, credential_id, role, workspace_id, created_at, updated_at;
	`
	return r.scanIdentity(r.db.QueryRowContext(ctx, query, credentialID, email))
}

func (r *identityRepository) AttachCredential(ctx context.Context, identityID, credentialID string) error {
	const query = `
		UPDATE staff.identities
		SET credential_id = $2, updated_at = now()
		WHERE id = $1 AND credential_id IS NULL;
	`
	result, err := r.db.ExecContext(ctx, query, identityID, credentialID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *identityRepository) CreateAdminIdentity(ctx context.Context, email string, role models.Role, workspaceID *string) (models.Identity, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Identity{}, err
	}
	defer tx.Rollback()

	const claim = `INSERT INTO staff.claimed_emails (email, kind) VALUES ($1, 'admin');`
	if _, err := tx.ExecContext(ctx, claim, email); err != nil {
		return models.Identity{}, err
	}

	const insert = `
		INSERT INTO staff.identities (email, role, workspace_id)
		VALUES ($1, $2, $3)
		RETURNING id, email, credential_id, role, workspace_id, created_at, updated_at;
	`
	identity, err := r.scanIdentity(tx.QueryRowContext(ctx, insert, email, string(role), workspaceID))
	if err != nil {
		return models.Identity{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Identity{}, err
	}
	return identity, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *identityRepository) scanIdentity(row rowScanner) (models.Identity, error) {
	var (
		identity     models.Identity
		credentialID sql.NullString
		workspaceID  sql.NullString
		role         string
	)
	err := row.Scan(
		&identity.ID,
		&identity.Email,
		&credentialID,
		&role,
		&workspaceID,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return models.Identity{}, err
	}

	identity.Role = models.Role(role)
	if credentialID.Valid {
		identity.CredentialID = &credentialID.String
	}
	if workspaceID.Valid {
		identity.WorkspaceID = &workspaceID.String
	}
	return identity, nil
}
