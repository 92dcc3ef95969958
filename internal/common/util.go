package common

import (
	"crypto/rand"
	"encoding/base64"
)

// NewOpaqueToken returns n random bytes encoded as unpadded base64url, safe
// to embed in emailed links.
func NewOpaqueToken(n int) string {
	return base64.RawURLEncoding.EncodeToString(RandomBytes(n))
}

// RandomBytes returns n bytes from crypto/rand, which does not fail since
// Go 1.24.
func RandomBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

// Wipe zeroes secret material in place once it is no longer needed.
func Wipe(b []byte) {
	clear(b)
}
