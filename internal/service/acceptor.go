package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/replyhub/identity-api/internal/apperr"
	"github.com/replyhub/identity-api/internal/audit"
	"github.com/replyhub/identity-api/internal/credential"
	"github.com/replyhub/identity-api/internal/models"
	"github.com/replyhub/identity-api/internal/repository"
	"github.com/rs/zerolog"
)

// ProfileParams carries the profile fields the invitee submits at acceptance.
type ProfileParams struct {
	FirstName string
	LastName  string
}

type AcceptResult struct {
	IdentityID   string `json:"identity_id"`
	CredentialID string `json:"credential_id"`
	WorkspaceID  string `json:"workspace_id"`
}

// InviteAcceptor consumes an invite token and provisions the credential,
// identity, and employee records. Every step is individually idempotent, so a
// partially failed acceptance can be retried with the same token.
type InviteAcceptor struct {
	invites    repository.InviteRepository
	identities repository.IdentityRepository
	employees  repository.EmployeeRepository
	provider   credential.Provider
	audit      audit.Recorder
	logger     zerolog.Logger
	now        func() time.Time
}

func NewInviteAcceptor(
	invites repository.InviteRepository,
	identities repository.IdentityRepository,
	employees repository.EmployeeRepository,
	provider credential.Provider,
	recorder audit.Recorder,
	logger zerolog.Logger,
) *InviteAcceptor {
	return &InviteAcceptor{
		invites:    invites,
		identities: identities,
		employees:  employees,
		provider:   provider,
		audit:      recorder,
		logger:     logger.With().Str("component", "invite_acceptor").Logger(),
		now:        time.Now,
	}
}

// AcceptInvite consumes the token. A missing, already-accepted, or expired
// token all surface as the same generic error so callers cannot probe which
// case applied. Acceptance never authenticates the caller; login is a
// separate concern.
func (s *InviteAcceptor) AcceptInvite(ctx context.Context, token string, profile ProfileParams, password string) (AcceptResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return AcceptResult{}, apperr.ErrNotFoundOrExpired
	}
	if strings.TrimSpace(password) == "" {
		return AcceptResult{}, apperr.Validationf("password is required")
	}

	// Step 1: token lookup. Any failure collapses to the generic error.
	invite, err := s.invites.GetInviteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AcceptResult{}, apperr.ErrNotFoundOrExpired
		}
		return AcceptResult{}, apperr.Storage("lookup invite by token", err)
	}
	if invite.Status != models.InvitePending || invite.IsExpired(s.now()) {
		return AcceptResult{}, apperr.ErrNotFoundOrExpired
	}

	// Step 2: re-check the reserved-identity conflict. An admin identity may
	// have been created for this email after the invite was issued.
	existing, err := s.identities.GetIdentityByEmail(ctx, invite.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return AcceptResult{}, apperr.Storage("lookup identity by email", err)
	}
	if err == nil && existing.IsReserved() {
		return AcceptResult{}, apperr.Forbiddenf("admin account cannot become an employee")
	}

	// Step 3: resolve or provision the identity and its credential.
	identity, err := s.resolveIdentity(ctx, invite.Email, password)
	if err != nil {
		return AcceptResult{}, err
	}

	// Step 4: resolve the workspace. Platform-wide invites land in the
	// reserved platform workspace.
	workspaceID := models.PlatformWorkspaceID
	if invite.WorkspaceID != nil {
		workspaceID = *invite.WorkspaceID
	}

	// Step 5: provision the employee.
	_, err = s.employees.CreateEmployee(ctx, repository.CreateEmployeeParams{
		CredentialID:  *identity.CredentialID,
		Email:         invite.Email,
		FirstName:     strings.TrimSpace(profile.FirstName),
		LastName:      strings.TrimSpace(profile.LastName),
		WorkspaceID:   workspaceID,
		InvitedByRole: invite.InviterRole(),
	})
	if err != nil {
		if !repository.IsUniqueViolation(err) {
			s.logger.Error().Err(err).Str("invite_id", invite.ID).Msg("failed to provision employee")
			return AcceptResult{}, apperr.Storage("insert employee", err)
		}
		// A unique violation usually means a concurrent or earlier acceptance
		// already provisioned this employee, but it can also be an admin
		// email claim created after the step-2 check. Only the presence of
		// the employee row tells the two apart; without it the invite must
		// not be consumed.
		if _, lookupErr := s.employees.GetEmployeeByCredentialID(ctx, *identity.CredentialID); lookupErr != nil {
			if errors.Is(lookupErr, sql.ErrNoRows) {
				return AcceptResult{}, apperr.Forbiddenf("admin account cannot become an employee")
			}
			return AcceptResult{}, apperr.Storage("requery employee after conflict", lookupErr)
		}
	}

	// Step 6: mark the invite accepted, last. If a crash separated steps 5
	// and 6, the retried call reaches here with the employee already in
	// place; if a concurrent acceptance won the update, absorb it.
	if _, err := s.invites.MarkInviteAccepted(ctx, invite.ID); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return AcceptResult{}, apperr.Storage("mark invite accepted", err)
	}

	s.audit.InviteAccepted(ctx, invite, workspaceID)
	return AcceptResult{
		IdentityID:   identity.ID,
		CredentialID: *identity.CredentialID,
		WorkspaceID:  workspaceID,
	}, nil
}

// resolveIdentity returns an identity for the email that is guaranteed to
// carry a credential, creating either or both as needed. Concurrent callers
// racing on the insert converge on the same record via requery.
func (s *InviteAcceptor) resolveIdentity(ctx context.Context, email, password string) (models.Identity, error) {
	identity, err := s.identities.GetIdentityByEmail(ctx, email)
	switch {
	case err == nil:
		// Re-check here as well: the identity may have been created as an
		// admin after the acceptance-time check.
		if identity.IsReserved() {
			return models.Identity{}, apperr.Forbiddenf("admin account cannot become an employee")
		}
		return s.ensureCredential(ctx, identity, password)

	case errors.Is(err, sql.ErrNoRows):
		credentialID, err := s.createCredential(ctx, email, password)
		if err != nil {
			return models.Identity{}, err
		}
		created, err := s.identities.CreateIdentity(ctx, credentialID, email)
		if err != nil {
			if repository.IsUniqueViolation(err) {
				// Lost the insert race; converge on the winner's record.
				identity, err := s.identities.GetIdentityByEmail(ctx, email)
				if err != nil {
					return models.Identity{}, apperr.Storage("requery identity after conflict", err)
				}
				if identity.IsReserved() {
					return models.Identity{}, apperr.Forbiddenf("admin account cannot become an employee")
				}
				return s.ensureCredential(ctx, identity, password)
			}
			return models.Identity{}, apperr.Storage("insert identity", err)
		}
		return created, nil

	default:
		return models.Identity{}, apperr.Storage("lookup identity by email", err)
	}
}

// ensureCredential attaches a credential to an identity that lacks one. An
// identity that already has a credential is reused as-is.
func (s *InviteAcceptor) ensureCredential(ctx context.Context, identity models.Identity, password string) (models.Identity, error) {
	if identity.CredentialID != nil {
		return identity, nil
	}

	credentialID, err := s.createCredential(ctx, identity.Email, password)
	if err != nil {
		return models.Identity{}, err
	}
	if err := s.identities.AttachCredential(ctx, identity.ID, credentialID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A concurrent acceptance attached a credential first; the
			// binding is write-once, so read it back.
			refreshed, err := s.identities.GetIdentityByEmail(ctx, identity.Email)
			if err != nil {
				return models.Identity{}, apperr.Storage("requery identity after attach race", err)
			}
			if refreshed.CredentialID == nil {
				return models.Identity{}, apperr.Storage("attach credential", errors.New("identity still has no credential after attach race"))
			}
			return refreshed, nil
		}
		return models.Identity{}, apperr.Storage("attach credential", err)
	}
	identity.CredentialID = &credentialID
	return identity, nil
}

func (s *InviteAcceptor) createCredential(ctx context.Context, email, password string) (string, error) {
	credentialID, err := s.provider.CreateCredential(ctx, email, password)
	if err != nil {
		if errors.Is(err, credential.ErrEmailTaken) {
			return "", apperr.Conflictf("a credential already exists for this email")
		}
		s.logger.Error().Err(err).Str("email", email).Msg("credential provider call failed")
		return "", err
	}
	return credentialID, nil
}
