package models

import "time"

// Identity is the global account record. Role and WorkspaceID are populated
// only for admin and super_admin actors; employees are represented by a
// separate Employee record and carry RoleNone here.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	CredentialID *string   `json:"credential_id,omitempty"`
	Role         Role      `json:"role"`
	WorkspaceID  *string   `json:"workspace_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsReserved reports whether the identity's email is reserved for an
// administrative role and therefore may never become an employee.
func (i Identity) IsReserved() bool {
	return i.Role == RoleAdmin || i.Role == RoleSuperAdmin
}
