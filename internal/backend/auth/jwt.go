// Package auth issues and verifies the HS256 access tokens that carry a
// session's identity.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the identity fields the client needs to rebuild a session
// without another round trip.
type Claims struct {
	jwt.RegisteredClaims
	UserID        string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	UserCreatedAt int64  `json:"user_created_at"`
}

// Identity is what goes into a token.
type Identity struct {
	UserID        string
	Email         string
	EmailVerified bool
	UserCreatedAt time.Time
}

// GenerateToken signs an access token for id valid from now for validity.
// It returns the token and its expiry.
func GenerateToken(id Identity, secretKey []byte, now time.Time, validity time.Duration) (string, time.Time, error) {
	expires := now.Add(validity)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID:        id.UserID,
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
		UserCreatedAt: id.UserCreatedAt.Unix(),
	})

	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseToken verifies tokenString. Expired tokens yield
// common.ErrTokenExpired, anything else unacceptable common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	return ParseTokenAt(tokenString, secretKey, time.Now())
}

// ParseTokenAt is ParseToken with expiry checked against now.
func ParseTokenAt(tokenString string, secretKey []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Expiry returns the token expiry, zero if unset.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// CreatedAt returns the account creation time carried in the token.
func (c *Claims) CreatedAt() time.Time {
	return time.Unix(c.UserCreatedAt, 0).UTC()
}
