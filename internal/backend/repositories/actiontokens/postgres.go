package actiontokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hrmis/internal/backend/models"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.ActionToken) error {
	query := `
		INSERT INTO auth_action_tokens (token, user_id, purpose, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, t.Token, t.UserID, string(t.Purpose), t.Expires); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Consume(ctx context.Context, token string, purpose models.ActionPurpose) (*models.ActionToken, error) {
	query := `
		DELETE FROM auth_action_tokens
		WHERE token = $1 AND purpose = $2
		RETURNING user_id, expires_at
	`
	t := &models.ActionToken{Token: token, Purpose: purpose}
	if err := r.db.QueryRowContext(ctx, query, token, string(purpose)).Scan(&t.UserID, &t.Expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
