package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/replyhub/identity-api/internal/apperr"
	"github.com/replyhub/identity-api/internal/audit"
	"github.com/replyhub/identity-api/internal/models"
	"github.com/replyhub/identity-api/internal/repository"
	"github.com/rs/zerolog"
)

// AccessGrant is the authoritative role and scope for a credential.
// PrincipalID is the id of the backing identity or employee record.
// PlanLimits is populated for grants scoped to a tenant workspace.
type AccessGrant struct {
	PrincipalID string       `json:"principal_id"`
	Role        models.Role  `json:"role"`
	WorkspaceID *string      `json:"workspace_id,omitempty"`
	PlanLimits  *models.Plan `json:"plan_limits,omitempty"`
}

// RoleResolver is the single authorization oracle. Every protected operation
// re-derives role and workspace from storage through it instead of trusting
// client claims.
type RoleResolver struct {
	identities repository.IdentityRepository
	employees  repository.EmployeeRepository
	workspaces repository.WorkspaceRepository
	plans      map[string]models.Plan
	audit      audit.Recorder
	logger     zerolog.Logger
}

func NewRoleResolver(
	identities repository.IdentityRepository,
	employees repository.EmployeeRepository,
	workspaces repository.WorkspaceRepository,
	plans map[string]models.Plan,
	recorder audit.Recorder,
	logger zerolog.Logger,
) *RoleResolver {
	return &RoleResolver{
		identities: identities,
		employees:  employees,
		workspaces: workspaces,
		plans:      plans,
		audit:      recorder,
		logger:     logger.With().Str("component", "role_resolver").Logger(),
	}
}

// ResolveAccess looks the credential up in priority order: super_admin
// identity, admin identity, employee. Inconsistent admin state is surfaced as
// Forbidden rather than silently tolerated.
func (s *RoleResolver) ResolveAccess(ctx context.Context, credentialID string) (AccessGrant, error) {
	identity, err := s.identities.GetIdentityByCredentialID(ctx, credentialID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return AccessGrant{}, apperr.Storage("lookup identity by credential", err)
	}

	if err == nil {
		role, parseErr := models.ParseRole(string(identity.Role))
		if parseErr != nil {
			s.logger.Error().Str("identity_id", identity.ID).Str("role", string(identity.Role)).Msg("identity carries unrecognized role")
			return AccessGrant{}, apperr.Forbiddenf("invalid admin account state")
		}

		switch role {
		case models.RoleSuperAdmin:
			if identity.WorkspaceID != nil {
				s.audit.AccessDenied(ctx, credentialID, "super_admin bound to a workspace")
				return AccessGrant{}, apperr.Forbiddenf("invalid admin account state")
			}
			return AccessGrant{PrincipalID: identity.ID, Role: models.RoleSuperAdmin}, nil

		case models.RoleAdmin:
			if identity.WorkspaceID == nil {
				s.audit.AccessDenied(ctx, credentialID, "admin without a workspace")
				return AccessGrant{}, apperr.Forbiddenf("invalid admin account state")
			}
			return AccessGrant{
				PrincipalID: identity.ID,
				Role:        models.RoleAdmin,
				WorkspaceID: identity.WorkspaceID,
				PlanLimits:  s.planLimitsFor(ctx, *identity.WorkspaceID),
			}, nil

		case models.RoleEmployee:
			// Employees never carry a role on the identity record.
			s.audit.AccessDenied(ctx, credentialID, "identity carries employee role")
			return AccessGrant{}, apperr.Forbiddenf("invalid admin account state")

		case models.RoleNone:
			// Fall through to the employee lookup below.
		}
	}

	employee, err := s.employees.GetEmployeeByCredentialID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.audit.AccessDenied(ctx, credentialID, "no identity or employee record")
			return AccessGrant{}, apperr.ErrUnauthorized
		}
		return AccessGrant{}, apperr.Storage("lookup employee by credential", err)
	}
	if employee.Status != models.EmployeeActive {
		s.audit.AccessDenied(ctx, credentialID, "employee is inactive")
		return AccessGrant{}, apperr.ErrUnauthorized
	}

	return AccessGrant{
		PrincipalID: employee.ID,
		Role:        models.RoleEmployee,
		WorkspaceID: &employee.WorkspaceID,
		PlanLimits:  s.planLimitsFor(ctx, employee.WorkspaceID),
	}, nil
}

// planLimitsFor resolves the plan for a tenant workspace. The field is
// optional in the grant, so lookup failures degrade to nil rather than
// failing the resolution.
func (s *RoleResolver) planLimitsFor(ctx context.Context, workspaceID string) *models.Plan {
	if models.IsPlatformWorkspace(workspaceID) {
		return nil
	}
	ws, err := s.workspaces.GetWorkspaceByID(ctx, workspaceID)
	if err != nil {
		s.logger.Warn().Err(err).Str("workspace_id", workspaceID).Msg("failed to resolve workspace plan")
		return nil
	}
	plan, ok := s.plans[ws.Plan]
	if !ok {
		s.logger.Warn().Str("workspace_id", workspaceID).Str("plan", ws.Plan).Msg("workspace carries unknown plan")
		return nil
	}
	return &plan
}
