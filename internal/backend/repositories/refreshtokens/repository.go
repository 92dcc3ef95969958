// Package refreshtokens stores the single-use refresh tokens behind a
// session.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/backend/models"
)

type Repository interface {
	Create(ctx context.Context, userID, token string, expires time.Time) error

	// Take removes token and returns what it was issued for, so two
	// concurrent refreshes cannot both rotate it. A missing token yields
	// common.ErrorNotFound.
	Take(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete is a no-op for a missing token.
	Delete(ctx context.Context, token string) error

	// DeleteForUser revokes every session of userID.
	DeleteForUser(ctx context.Context, userID string) error
}
