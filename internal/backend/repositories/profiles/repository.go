// Package profiles stores one profile row per user.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/hrmis/internal/client/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound when the user has no row.
	Get(ctx context.Context, id string) (*models.Profile, error)
	// Upsert inserts p or overwrites every column except created_at.
	Upsert(ctx context.Context, p *models.Profile) (*models.Profile, error)
	// Update writes the non-nil fields of patch plus updated_at.
	Update(ctx context.Context, id string, patch models.ProfilePatch) (*models.Profile, error)
}
