package models

import "time"

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// Employee is a workspace- or platform-scoped staff record. WorkspaceID is
// never empty; platform staff are scoped to the reserved platform workspace.
type Employee struct {
	ID            string         `json:"id"`
	CredentialID  string         `json:"credential_id"`
	Email         string         `json:"email"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	WorkspaceID   string         `json:"workspace_id"`
	InvitedByRole InvitedByRole  `json:"invited_by_role"`
	Status        EmployeeStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
