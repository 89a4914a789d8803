// Package guard enforces the workspace-scoping invariants on every employee
// write. The same rules are installed as a Postgres trigger by the schema
// migration; this in-process check runs first and keeps the rules testable
// without a database.
package guard

import (
	"fmt"

	"github.com/replyhub/identity-api/internal/models"
)

// ConstraintError rejects an employee write that violates a scoping invariant.
type ConstraintError struct {
	Msg string
}

func (e *ConstraintError) Error() string { return e.Msg }

func constraintf(format string, args ...interface{}) error {
	return &ConstraintError{Msg: fmt.Sprintf(format, args...)}
}

// ValidateEmployeeWrite checks the invariants every employee row must satisfy:
// a non-empty workspace, super_admin-issued staff scoped to the platform
// workspace, client_admin-issued staff scoped to a tenant workspace.
func ValidateEmployeeWrite(e models.Employee) error {
	if e.WorkspaceID == "" {
		return constraintf("employee workspace_id must not be empty")
	}
	if e.Email == "" {
		return constraintf("employee email must not be empty")
	}
	if e.CredentialID == "" {
		return constraintf("employee credential_id must not be empty")
	}
	if e.Status != models.EmployeeActive && e.Status != models.EmployeeInactive {
		return constraintf("employee status %q is not valid", e.Status)
	}

	switch e.InvitedByRole {
	case models.InvitedBySuperAdmin:
		if !models.IsPlatformWorkspace(e.WorkspaceID) {
			return constraintf("super_admin-invited employee must be scoped to the platform workspace, got %q", e.WorkspaceID)
		}
	case models.InvitedByClientAdmin:
		if models.IsPlatformWorkspace(e.WorkspaceID) {
			return constraintf("client_admin-invited employee cannot be scoped to the platform workspace")
		}
	default:
		return constraintf("invited_by_role %q is not valid", e.InvitedByRole)
	}
	return nil
}
