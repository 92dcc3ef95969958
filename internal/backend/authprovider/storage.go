package authprovider

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hrmis/internal/client/repositories/metadata"
)

// StoredSession is the persisted part of a session.
type StoredSession struct {
	AccessToken  string
	RefreshToken string
}

// SessionStorage persists the current session between runs.
type SessionStorage interface {
	// Load returns nil when nothing is stored.
	Load(ctx context.Context) (*StoredSession, error)
	Save(ctx context.Context, s *StoredSession) error
	Clear(ctx context.Context) error
}

const (
	keyAccessToken  = "session.access_token"
	keyRefreshToken = "session.refresh_token"
)

// MetadataStorage keeps the session in the local metadata table.
type MetadataStorage struct {
	repo metadata.Repository
}

func NewMetadataStorage(repo metadata.Repository) *MetadataStorage {
	return &MetadataStorage{repo: repo}
}

func (m *MetadataStorage) Load(ctx context.Context) (*StoredSession, error) {
	kv, err := m.repo.List(ctx, "session.")
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	access, refresh := kv[keyAccessToken], kv[keyRefreshToken]
	if len(access) == 0 || len(refresh) == 0 {
		return nil, nil
	}
	return &StoredSession{AccessToken: string(access), RefreshToken: string(refresh)}, nil
}

func (m *MetadataStorage) Save(ctx context.Context, s *StoredSession) error {
	err := m.repo.Put(ctx, map[string][]byte{
		keyAccessToken:  []byte(s.AccessToken),
		keyRefreshToken: []byte(s.RefreshToken),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (m *MetadataStorage) Clear(ctx context.Context) error {
	if err := m.repo.Delete(ctx, keyAccessToken, keyRefreshToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
