package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/replyhub/identity-api/internal/apperr"
	"github.com/replyhub/identity-api/internal/audit"
	"github.com/replyhub/identity-api/internal/models"
	"github.com/replyhub/identity-api/internal/repository"
	"github.com/rs/zerolog"
)

const inviteTTL = 30 * 24 * time.Hour

// Invoker is the authenticated principal performing an invite operation, as
// resolved from storage by the role resolver. Client-supplied role claims
// never reach this type.
type Invoker struct {
	IdentityID  string
	Role        models.Role
	WorkspaceID *string
}

type CreatedInvite struct {
	InviteID string `json:"invite_id"`
	Token    string `json:"token"`
	Email    string `json:"email"`
}

// InviteIssuer mints invite tokens under plan-quota and reserved-identity
// rules.
type InviteIssuer struct {
	invites    repository.InviteRepository
	identities repository.IdentityRepository
	employees  repository.EmployeeRepository
	workspaces repository.WorkspaceRepository
	plans      map[string]models.Plan
	audit      audit.Recorder
	logger     zerolog.Logger
	now        func() time.Time
}

func NewInviteIssuer(
	invites repository.InviteRepository,
	identities repository.IdentityRepository,
	employees repository.EmployeeRepository,
	workspaces repository.WorkspaceRepository,
	plans map[string]models.Plan,
	recorder audit.Recorder,
	logger zerolog.Logger,
) *InviteIssuer {
	return &InviteIssuer{
		invites:    invites,
		identities: identities,
		employees:  employees,
		workspaces: workspaces,
		plans:      plans,
		audit:      recorder,
		logger:     logger.With().Str("component", "invite_issuer").Logger(),
		now:        time.Now,
	}
}

// CreateInvite runs the issue-time checks in order: email syntax,
// authorization, reserved identity, duplicate invite, plan quota. Only then is
// the invite inserted.
func (s *InviteIssuer) CreateInvite(ctx context.Context, email string, role models.Role, workspaceID *string, invoker Invoker) (CreatedInvite, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return CreatedInvite{}, apperr.Validationf("invalid email address")
	}
	if role != models.RoleEmployee {
		return CreatedInvite{}, apperr.Validationf("invites can only target the employee role")
	}

	switch invoker.Role {
	case models.RoleSuperAdmin:
		if workspaceID != nil {
			return CreatedInvite{}, apperr.Forbiddenf("super_admin invites must be platform-wide")
		}
	case models.RoleAdmin:
		if invoker.WorkspaceID == nil {
			return CreatedInvite{}, apperr.Forbiddenf("invalid admin account state")
		}
		if workspaceID == nil || *workspaceID != *invoker.WorkspaceID {
			return CreatedInvite{}, apperr.Forbiddenf("admins may only invite into their own workspace")
		}
	default:
		return CreatedInvite{}, apperr.Forbiddenf("role %q cannot issue invites", invoker.Role)
	}

	identity, err := s.identities.GetIdentityByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return CreatedInvite{}, apperr.Storage("lookup identity by email", err)
	}
	if err == nil && identity.IsReserved() {
		return CreatedInvite{}, apperr.Conflictf("email reserved for admin role")
	}

	if _, err := s.invites.FindActiveInviteByEmail(ctx, email); err == nil {
		return CreatedInvite{}, apperr.Conflictf("an invite already exists for this email")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return CreatedInvite{}, apperr.Storage("lookup invite by email", err)
	}

	if workspaceID != nil {
		if err := s.checkPlanQuota(ctx, *workspaceID); err != nil {
			return CreatedInvite{}, err
		}
	}

	token, err := generateInviteToken()
	if err != nil {
		return CreatedInvite{}, apperr.Storage("generate invite token", err)
	}

	created, err := s.invites.CreateInvite(ctx, models.Invite{
		Email:       email,
		Role:        role,
		WorkspaceID: workspaceID,
		InvitedBy:   invoker.IdentityID,
		Token:       token,
		ExpiresAt:   s.now().Add(inviteTTL),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to insert invite")
		return CreatedInvite{}, apperr.Storage("insert invite", err)
	}

	s.audit.InviteIssued(ctx, created)
	return CreatedInvite{InviteID: created.ID, Token: token, Email: created.Email}, nil
}

func (s *InviteIssuer) checkPlanQuota(ctx context.Context, workspaceID string) error {
	ws, err := s.workspaces.GetWorkspaceByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.Validationf("workspace not found")
		}
		return apperr.Storage("lookup workspace", err)
	}

	plan, ok := s.plans[ws.Plan]
	if !ok {
		return apperr.Storage("resolve plan", fmt.Errorf("workspace %s carries unknown plan %q", ws.ID, ws.Plan))
	}

	current, err := s.employees.CountActiveByWorkspace(ctx, workspaceID)
	if err != nil {
		return apperr.Storage("count employees", err)
	}
	if current >= plan.MaxEmployees {
		s.audit.QuotaExceeded(ctx, workspaceID, plan.Name, plan.MaxEmployees, current)
		return &apperr.PlanLimitError{Plan: plan.Name, Limit: plan.MaxEmployees, Current: current}
	}
	return nil
}

// generateInviteToken returns 128 bits of cryptographic randomness, base64url
// encoded. Global uniqueness is backed by the unique constraint on the token
// column.
func generateInviteToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
