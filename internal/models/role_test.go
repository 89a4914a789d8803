package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasAtLeast(t *testing.T) {
	assert.True(t, HasAtLeast(RoleSuperAdmin, RoleAdmin))
	assert.True(t, HasAtLeast(RoleAdmin, RoleAdmin))
	assert.True(t, HasAtLeast(RoleAdmin, RoleEmployee))
	assert.False(t, HasAtLeast(RoleEmployee, RoleAdmin))
	assert.False(t, HasAtLeast(RoleNone, RoleEmployee))
	assert.False(t, HasAtLeast(Role("owner"), RoleEmployee))
}

func TestParseRoleRejectsUnknownValues(t *testing.T) {
	for _, valid := range []string{"super_admin", "admin", "employee", "none"} {
		role, err := ParseRole(valid)
		assert.NoError(t, err)
		assert.Equal(t, Role(valid), role)
	}

	_, err := ParseRole("owner")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestInviterRoleDerivedFromScope(t *testing.T) {
	platformInvite := Invite{}
	assert.Equal(t, InvitedBySuperAdmin, platformInvite.InviterRole())

	workspaceID := "ws-1"
	tenantInvite := Invite{WorkspaceID: &workspaceID}
	assert.Equal(t, InvitedByClientAdmin, tenantInvite.InviterRole())
}

func TestInviteIsExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, Invite{ExpiresAt: now.Add(time.Minute)}.IsExpired(now))
	assert.True(t, Invite{ExpiresAt: now.Add(-time.Minute)}.IsExpired(now))
}
