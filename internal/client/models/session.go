// Package models defines the client-side data models: the cached session,
// session-change events and the profile record with its patches.
package models

import "time"

// Session is the locally cached, read-only view of an authenticated
// identity. It is replaced wholesale on every session-change notification.
type Session struct {
	UserID        string
	Email         string
	EmailVerified bool
	// CreatedAt is when the user account was created.
	CreatedAt time.Time
	// ExpiresAt is when the access token stops being accepted.
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// AuthEventType names a session-change notification.
type AuthEventType string

const (
	EventSignedIn         AuthEventType = "SIGNED_IN"
	EventSignedOut        AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed   AuthEventType = "TOKEN_REFRESHED"
	EventUserUpdated      AuthEventType = "USER_UPDATED"
	EventPasswordRecovery AuthEventType = "PASSWORD_RECOVERY"
)

// AuthEvent is delivered to session-change subscribers. Session is nil
// when the event leaves the viewer signed out.
type AuthEvent struct {
	Type    AuthEventType
	Session *Session
}
