// Package cryptox implements password hashing for the auth provider.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/hrmis/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of freshly generated password salts.
const SaltSize = 16

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// HashPassword derives an argon2id hash of password with salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// NewSalt returns SaltSize random bytes.
func NewSalt() []byte {
	return common.RandomBytes(SaltSize)
}

// VerifyPassword reports whether candidate hashes to hash under salt.
// The comparison runs in constant time.
func VerifyPassword(candidate, salt, hash []byte) bool {
	return subtle.ConstantTimeCompare(HashPassword(candidate, salt), hash) == 1
}
