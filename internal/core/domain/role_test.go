package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleRank_TotalOrder(t *testing.T) {
	assert.Less(t, RoleUser.Rank(), RoleModerator.Rank())
	assert.Less(t, RoleModerator.Rank(), RoleAdmin.Rank())
	assert.Equal(t, 0, Role("GUEST").Rank())
	assert.Equal(t, 0, Role("").Rank())
}

func TestRoleSatisfies(t *testing.T) {
	tests := []struct {
		name     string
		actual   Role
		required Role
		want     bool
	}{
		{"user satisfies user", RoleUser, RoleUser, true},
		{"user does not satisfy moderator", RoleUser, RoleModerator, false},
		{"user does not satisfy admin", RoleUser, RoleAdmin, false},
		{"moderator satisfies user", RoleModerator, RoleUser, true},
		{"moderator satisfies moderator", RoleModerator, RoleModerator, true},
		{"moderator does not satisfy admin", RoleModerator, RoleAdmin, false},
		{"admin satisfies everything", RoleAdmin, RoleUser, true},
		{"admin satisfies admin", RoleAdmin, RoleAdmin, true},
		{"unknown role fails closed", Role("GUEST"), RoleUser, false},
		{"empty role fails closed", Role(""), RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.actual.Satisfies(tt.required))
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"USER", "MODERATOR", "ADMIN"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, Role(valid), role)
	}

	for _, invalid := range []string{"", "GUEST", "user", "Admin", "ROOT"} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "role %q must be rejected", invalid)
	}
}
