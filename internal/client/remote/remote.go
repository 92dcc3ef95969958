// Package remote declares the capabilities the client consumes from the
// hosted backend: the auth provider, the profile record store and the
// avatar object store. Concrete implementations live under
// internal/backend; tests use in-memory fakes.
//
// # Error Handling
//
// Implementations report failures with the sentinels from package common:
// common.ErrUnavailable for transport failures, common.ErrorNotFound for a
// missing record, common.ErrInvalidCredentials / common.ErrEmailUnverified
// for rejected sign-ins. Match them with errors.Is.
package remote

import (
	"context"

	"github.com/dmitrijs2005/hrmis/internal/client/models"
)

// SessionHandler receives session-change notifications.
type SessionHandler func(event models.AuthEvent)

// Subscription is a registered SessionHandler. After Unsubscribe returns
// the handler is never invoked again. Unsubscribe must not be called from
// inside the handler itself.
type Subscription interface {
	Unsubscribe()
}

// SessionSource is the read side of an auth provider.
type SessionSource interface {
	// GetCurrentSession returns the current session, or nil when signed out.
	GetCurrentSession(ctx context.Context) (*models.Session, error)
	SubscribeToSessionChanges(handler SessionHandler) Subscription
}

// AuthProvider owns credential checks, token refresh and session
// persistence.
type AuthProvider interface {
	SessionSource
	SignInWithCredentials(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email, returnURL string) error
}

// AccountManager covers account lifecycle operations outside the session
// lifecycle: registration, email confirmation and password reset.
type AccountManager interface {
	SignUp(ctx context.Context, email, password, fullName string) error
	VerifyEmail(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// RecordStore holds one profile row per user.
type RecordStore interface {
	// GetRecord returns common.ErrorNotFound when the user has no row.
	GetRecord(ctx context.Context, userID string) (*models.Profile, error)
	// UpsertRecord creates or replaces the row keyed by p.ID.
	UpsertRecord(ctx context.Context, p *models.Profile) (*models.Profile, error)
	// UpdateRecord applies patch to the row of userID and returns the
	// stored result.
	UpdateRecord(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
}

// ObjectStore stores avatar blobs.
type ObjectStore interface {
	UploadBlob(ctx context.Context, key string, data []byte, contentType string) error
	// ResolvePublicURL maps a key to a fetchable URL. The same key always
	// resolves to the same URL shape.
	ResolvePublicURL(ctx context.Context, key string) (string, error)
}
