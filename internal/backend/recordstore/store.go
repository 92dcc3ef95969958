// Package recordstore exposes the Postgres profiles table as the client's
// remote.RecordStore.
package recordstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hrmis/internal/backend/repositories/repomanager"
	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/dbx"
	"github.com/dmitrijs2005/hrmis/internal/logging"
)

type Store struct {
	db     dbx.DBTX
	repos  repomanager.RepositoryManager
	logger logging.Logger
}

func New(db dbx.DBTX, repos repomanager.RepositoryManager, logger logging.Logger) *Store {
	return &Store{db: db, repos: repos, logger: logger.With("component", "recordstore")}
}

func (s *Store) GetRecord(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", common.ErrValidation)
	}
	p, err := s.repos.Profiles(s.db).Get(ctx, userID)
	if err != nil {
		return nil, s.wrap(ctx, "get", userID, err)
	}
	return p, nil
}

func (s *Store) UpsertRecord(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if p == nil || p.ID == "" {
		return nil, fmt.Errorf("%w: profile without id", common.ErrValidation)
	}
	out, err := s.repos.Profiles(s.db).Upsert(ctx, p)
	if err != nil {
		return nil, s.wrap(ctx, "upsert", p.ID, err)
	}
	return out, nil
}

func (s *Store) UpdateRecord(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", common.ErrValidation)
	}
	out, err := s.repos.Profiles(s.db).Update(ctx, userID, patch)
	if err != nil {
		return nil, s.wrap(ctx, "update", userID, err)
	}
	return out, nil
}

// wrap keeps ErrorNotFound matchable and reports everything else as a
// transport failure.
func (s *Store) wrap(ctx context.Context, op, userID string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return err
	}
	s.logger.Error(ctx, "profile query failed", "op", op, "user_id", userID, "error", err)
	return fmt.Errorf("%w: %s profile: %w", common.ErrUnavailable, op, err)
}
