package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Deterministic(t *testing.T) {
	salt := []byte("fixed-salt-value")

	h1 := HashPassword([]byte("secret-password"), salt)
	h2 := HashPassword([]byte("secret-password"), salt)

	require.Len(t, h1, argonKeyLen)
	assert.True(t, bytes.Equal(h1, h2))
}

func TestHashPassword_SaltMatters(t *testing.T) {
	h1 := HashPassword([]byte("pw"), []byte("salt-1"))
	h2 := HashPassword([]byte("pw"), []byte("salt-2"))
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword(t *testing.T) {
	salt := NewSalt()
	require.Len(t, salt, SaltSize)

	hash := HashPassword([]byte("correct horse"), salt)

	assert.True(t, VerifyPassword([]byte("correct horse"), salt, hash))
	assert.False(t, VerifyPassword([]byte("wrong horse"), salt, hash))
	assert.False(t, VerifyPassword([]byte("correct horse"), NewSalt(), hash))
}
