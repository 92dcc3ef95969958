// Package users stores accounts in the auth_users table.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/backend/models"
)

type Repository interface {
	// Create inserts user; a taken email yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id string, hash, salt []byte) error
}
