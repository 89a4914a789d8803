package models

import "fmt"

// Role is the closed set of roles an authenticated principal can resolve to.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleEmployee   Role = "employee"
	// RoleNone marks an identity that carries no administrative role. Such an
	// identity may still back an employee record.
	RoleNone Role = "none"
)

// IsValidRole reports whether the role is one of the known values.
func IsValidRole(role Role) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleEmployee, RoleNone:
		return true
	}
	return false
}

// roleTier orders roles for permission checks. Higher wins.
func roleTier(role Role) int {
	switch role {
	case RoleSuperAdmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleEmployee:
		return 1
	default:
		return 0
	}
}

// HasAtLeast reports whether role meets or exceeds the required tier.
func HasAtLeast(role, required Role) bool {
	return roleTier(role) >= roleTier(required)
}

// InvitedByRole records which kind of actor issued an employee's invite.
type InvitedByRole string

const (
	InvitedBySuperAdmin  InvitedByRole = "super_admin"
	InvitedByClientAdmin InvitedByRole = "client_admin"
)

// IsValidInvitedByRole reports whether the value is a known inviter kind.
func IsValidInvitedByRole(r InvitedByRole) bool {
	return r == InvitedBySuperAdmin || r == InvitedByClientAdmin
}

// ParseRole converts a stored role string into a Role, rejecting anything
// outside the closed set so unknown values cannot fall through unnoticed.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !IsValidRole(role) {
		return "", fmt.Errorf("unrecognized role %q", s)
	}
	return role, nil
}
