package models

import "time"

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
)

// Invite represents a single-use invitation binding an email to a role and, for
// tenant invites, a workspace. A nil WorkspaceID means platform-wide.
type Invite struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	Role        Role         `json:"role"`
	WorkspaceID *string      `json:"workspace_id,omitempty"`
	InvitedBy   string       `json:"invited_by"`
	Token       string       `json:"-"`
	Status      InviteStatus `json:"status"`
	ExpiresAt   time.Time    `json:"expires_at"`
	CreatedAt   time.Time    `json:"created_at"`
	AcceptedAt  *time.Time   `json:"accepted_at,omitempty"`
}

// IsExpired determines whether the invite has expired.
func (i Invite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// InviterRole derives which kind of actor the invite came from. Platform-wide
// invites can only be minted by a super_admin; workspace invites only by that
// workspace's admin.
func (i Invite) InviterRole() InvitedByRole {
	if i.WorkspaceID == nil {
		return InvitedBySuperAdmin
	}
	return InvitedByClientAdmin
}
