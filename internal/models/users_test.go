package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	var u User
	require.NoError(t, u.SetPassword("hunter22"))

	assert.NotEqual(t, "hunter22", u.PasswordHash)
	assert.True(t, CheckPassword(u.PasswordHash, "hunter22"))
	assert.False(t, CheckPassword(u.PasswordHash, "hunter23"))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: "ADMIN"}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}

func TestProductStockAndPersistence(t *testing.T) {
	p := Product{Stock: 0}
	assert.False(t, p.InStock())
	assert.False(t, p.Persisted())

	p.ID, p.Stock = 3, 1
	assert.True(t, p.InStock())
	assert.True(t, p.Persisted())
}
