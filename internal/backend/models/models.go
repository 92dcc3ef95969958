// Package models defines the backend's persisted auth records. Profile rows
// use the client-facing models.Profile directly.
package models

import "time"

// User is an account in the auth_users table.
type User struct {
	ID              string
	Email           string
	PasswordHash    []byte
	Salt            []byte
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
}

// Verified reports whether the email address has been confirmed.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}

// ActionPurpose says what a one-time action token authorizes.
type ActionPurpose string

const (
	PurposeVerifyEmail   ActionPurpose = "verify_email"
	PurposeResetPassword ActionPurpose = "reset_password"
)

// ActionToken is a one-time token mailed to the user.
type ActionToken struct {
	Token   string
	UserID  string
	Purpose ActionPurpose
	Expires time.Time
}
