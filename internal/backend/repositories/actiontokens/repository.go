// Package actiontokens stores the one-time tokens mailed for email
// verification and password reset.
package actiontokens

import (
	"context"

	"github.com/dmitrijs2005/hrmis/internal/backend/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.ActionToken) error
	// Consume deletes and returns the token if it exists for purpose.
	// A token can be consumed once; afterwards common.ErrorNotFound.
	Consume(ctx context.Context, token string, purpose models.ActionPurpose) (*models.ActionToken, error)
}
