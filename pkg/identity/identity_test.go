package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/stockdash/pkg/identity"
)

func TestUser_IsAdmin(t *testing.T) {
	t.Parallel()

	var nilUser *identity.User
	assert.False(t, nilUser.IsAdmin())
	assert.False(t, (&identity.User{Role: identity.RoleStandard}).IsAdmin())
	assert.False(t, (&identity.User{}).IsAdmin())
	assert.True(t, (&identity.User{Role: identity.RoleAdmin}).IsAdmin())
}

func TestUser_Clone(t *testing.T) {
	t.Parallel()

	var nilUser *identity.User
	assert.Nil(t, nilUser.Clone())

	u := &identity.User{ID: "u1", Username: "alice", Role: identity.RoleAdmin}
	c := u.Clone()
	require.NotSame(t, u, c)
	assert.Equal(t, u, c)

	c.Role = identity.RoleStandard
	assert.Equal(t, identity.RoleAdmin, u.Role)
}
