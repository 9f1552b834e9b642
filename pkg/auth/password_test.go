package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPasswordPlain(t *testing.T) {
	assert.True(t, VerifyPassword("hunter2", "hunter2"))
	assert.False(t, VerifyPassword("hunter2", "hunter3"))
	assert.False(t, VerifyPassword("", "hunter2"))
	assert.False(t, VerifyPassword("hunter2", ""))
}

func TestVerifyPasswordBcrypt(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.True(t, len(hash) > 2 && hash[:2] == "$2")

	assert.True(t, VerifyPassword("hunter2", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}

func TestVerifyPasswordHashIsNotThePassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	// Presenting the stored hash itself must not authenticate.
	assert.False(t, VerifyPassword(hash, hash))
}
