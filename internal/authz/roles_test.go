package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNormalizes(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"  Admin  ", RoleAdmin},
		{"PROJECT_MANAGER", RoleProjectManager},
		{"hr", RoleHR},
		{"worker", RoleWorker},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	_, err := Parse("superuser")
	var invalid *InvalidRoleError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "superuser", invalid.Value)
	assert.Contains(t, invalid.Error(), "Must be one of:")
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse("   ")
	assert.True(t, errors.Is(err, ErrRoleRequired))
}

func TestValidateInputShapes(t *testing.T) {
	got, err := ValidateInput("mechanics")
	require.NoError(t, err)
	assert.Equal(t, RoleMechanics, got)

	// arrays resolve to the first element
	got, err = ValidateInput([]string{"hr", "admin"})
	require.NoError(t, err)
	assert.Equal(t, RoleHR, got)

	got, err = ValidateInput([]any{"accounting"})
	require.NoError(t, err)
	assert.Equal(t, RoleAccounting, got)

	_, err = ValidateInput(nil)
	assert.ErrorIs(t, err, ErrRoleRequired)

	_, err = ValidateInput([]string{})
	assert.ErrorIs(t, err, ErrRoleRequired)

	// no default role for anything else
	var invalid *InvalidRoleError
	_, err = ValidateInput(42)
	assert.ErrorAs(t, err, &invalid)
}

func TestLevelsAreOrdered(t *testing.T) {
	prev := 0
	for _, r := range ValidRoles {
		l := Level(r)
		assert.Greater(t, l, prev, "role %s", r)
		prev = l
	}
	assert.Equal(t, 7, Level(RoleAdmin))
	assert.Equal(t, 0, Level(Role("nobody")))
}

func TestIsManagerOrAbove(t *testing.T) {
	assert.True(t, IsManagerOrAbove(RoleAdmin))
	assert.True(t, IsManagerOrAbove(RoleProjectManager))
	assert.False(t, IsManagerOrAbove(RoleHR))
	assert.False(t, IsManagerOrAbove(RoleWorker))
}

func TestRoleSetHelpers(t *testing.T) {
	roles := []Role{RoleWorker, RoleHR}

	assert.True(t, HasRole(roles, RoleHR))
	assert.False(t, HasRole(roles, RoleAdmin))

	assert.True(t, HasAnyRole(roles, []Role{RoleAdmin, RoleWorker}))
	assert.False(t, HasAnyRole(roles, []Role{RoleAdmin, RoleAccounting}))

	assert.True(t, HasAllRoles(roles, []Role{RoleWorker, RoleHR}))
	assert.False(t, HasAllRoles(roles, []Role{RoleWorker, RoleAdmin}))

	assert.Equal(t, 5, HighestLevel(roles))
	assert.Equal(t, 0, HighestLevel(nil))
}
