package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("clinician")
	require.NoError(t, err)
	assert.Equal(t, RoleClinician, role)

	_, err = ParseRole("superuser")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleClinician))
	assert.True(t, RoleStaff.AtLeast(RoleStaff))
	assert.False(t, RolePatient.AtLeast(RoleStaff))
}

func TestPrivileged(t *testing.T) {
	assert.True(t, RoleAdmin.Privileged())
	assert.True(t, RoleClinician.Privileged())
	assert.False(t, RoleStaff.Privileged())
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"guest", "patient", "staff", "clinician", "admin"} {
		role, err := ParseRole(name)
		require.NoError(t, err)
		assert.Equal(t, name, role.String())
	}
}
