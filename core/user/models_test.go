package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	for _, role := range []Role{RoleMember, RoleChair, RoleSecretary} {
		assert.True(t, role.Valid(), "%s should be valid", role)
	}
	for _, role := range []Role{"", "admin", "Member", "MEMBER"} {
		assert.False(t, role.Valid(), "%s should be invalid", role)
	}
}

func TestHasElevatedPermission(t *testing.T) {
	assert.False(t, HasElevatedPermission(RoleMember))
	assert.True(t, HasElevatedPermission(RoleChair))
	assert.True(t, HasElevatedPermission(RoleSecretary))
	assert.False(t, HasElevatedPermission("admin"))
}

func TestUser_passwords(t *testing.T) {
	var usr User
	assert.NoError(t, usr.SetPassword("S3cret!pwd"))
	assert.NoError(t, usr.CheckPassword("S3cret!pwd"))
	assert.Error(t, usr.CheckPassword("nope"))
}
