package models

import "time"

// PlatformWorkspaceID is the reserved workspace that scopes the operator's own
// staff. It is seeded by the schema migration and is never a customer tenant.
const PlatformWorkspaceID = "00000000-0000-0000-0000-000000000001"

type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPlatform reports whether the workspace is the reserved platform workspace.
func (w Workspace) IsPlatform() bool {
	return w.ID == PlatformWorkspaceID
}

// IsPlatformWorkspace reports whether the id names the reserved platform workspace.
func IsPlatformWorkspace(id string) bool {
	return id == PlatformWorkspaceID
}
