package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/dbx"
)

const returning = `RETURNING id, full_name, birthday, age, avatar_url, updated_at, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, full_name, birthday, age, avatar_url, updated_at, created_at
		FROM profiles
		WHERE id = $1
	`
	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Upsert(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (id, full_name, birthday, age, avatar_url, updated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			full_name  = EXCLUDED.full_name,
			birthday   = EXCLUDED.birthday,
			age        = EXCLUDED.age,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at
		` + returning
	return scanProfile(r.db.QueryRowContext(ctx, query,
		p.ID, nullable(p.FullName), nullable(p.Birthday), nullable(p.Age), nullable(p.AvatarRef),
		p.UpdatedAt, p.CreatedAt))
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch models.ProfilePatch) (*models.Profile, error) {
	query := `
		UPDATE profiles SET
			full_name  = COALESCE($2, full_name),
			birthday   = COALESCE($3, birthday),
			age        = COALESCE($4, age),
			avatar_url = COALESCE($5, avatar_url),
			updated_at = $6
		WHERE id = $1
		` + returning
	return scanProfile(r.db.QueryRowContext(ctx, query,
		id, nullable(patch.FullName), nullable(patch.Birthday), nullable(patch.Age), nullable(patch.AvatarRef),
		patch.UpdatedAt))
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var (
		p        models.Profile
		fullName sql.NullString
		birthday sql.NullTime
		age      sql.NullInt64
		avatar   sql.NullString
	)
	err := row.Scan(&p.ID, &fullName, &birthday, &age, &avatar, &p.UpdatedAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if fullName.Valid {
		p.FullName = &fullName.String
	}
	if birthday.Valid {
		p.Birthday = &birthday.Time
	}
	if age.Valid {
		a := int(age.Int64)
		p.Age = &a
	}
	if avatar.Valid {
		p.AvatarRef = &avatar.String
	}
	return &p, nil
}

// nullable turns a nil pointer into SQL NULL.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
