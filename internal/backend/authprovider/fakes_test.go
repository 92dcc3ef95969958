package authprovider

import (
	"context"
	"database/sql"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/backend/mailer"
	bmodels "github.com/dmitrijs2005/hrmis/internal/backend/models"
	"github.com/dmitrijs2005/hrmis/internal/backend/repositories/actiontokens"
	"github.com/dmitrijs2005/hrmis/internal/backend/repositories/profiles"
	"github.com/dmitrijs2005/hrmis/internal/backend/repositories/refreshtokens"
	"github.com/dmitrijs2005/hrmis/internal/backend/repositories/users"
	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/dbx"
	"github.com/dmitrijs2005/hrmis/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// memStore backs all fake repositories.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*bmodels.User
	refresh  map[string]*bmodels.RefreshToken
	actions  map[string]*bmodels.ActionToken
	profiles map[string]*models.Profile

	takeErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*bmodels.User{},
		refresh:  map[string]*bmodels.RefreshToken{},
		actions:  map[string]*bmodels.ActionToken{},
		profiles: map[string]*models.Profile{},
	}
}

type fakeUsers struct{ s *memStore }

func (f fakeUsers) Create(_ context.Context, u *bmodels.User) (*bmodels.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, existing := range f.s.users {
		if existing.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	c := *u
	c.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.s.users[u.ID] = &c
	out := c
	return &out, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*bmodels.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*bmodels.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f fakeUsers) MarkEmailVerified(_ context.Context, id string, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	if u.EmailVerifiedAt == nil {
		u.EmailVerifiedAt = &at
	}
	return nil
}

func (f fakeUsers) UpdatePassword(_ context.Context, id string, hash, salt []byte) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash, u.Salt = hash, salt
	return nil
}

type fakeRefresh struct{ s *memStore }

func (f fakeRefresh) Create(_ context.Context, userID, token string, expires time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.refresh[token] = &bmodels.RefreshToken{UserID: userID, Token: token, Expires: expires}
	return nil
}

func (f fakeRefresh) Take(_ context.Context, token string) (*bmodels.RefreshToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.takeErr != nil {
		return nil, f.s.takeErr
	}
	rt, ok := f.s.refresh[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.s.refresh, token)
	return rt, nil
}

func (f fakeRefresh) Delete(_ context.Context, token string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.refresh, token)
	return nil
}

func (f fakeRefresh) DeleteForUser(_ context.Context, userID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for k, rt := range f.s.refresh {
		if rt.UserID == userID {
			delete(f.s.refresh, k)
		}
	}
	return nil
}

type fakeActions struct{ s *memStore }

func (f fakeActions) Create(_ context.Context, t *bmodels.ActionToken) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c := *t
	f.s.actions[t.Token] = &c
	return nil
}

func (f fakeActions) Consume(_ context.Context, token string, purpose bmodels.ActionPurpose) (*bmodels.ActionToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.actions[token]
	if !ok || t.Purpose != purpose {
		return nil, common.ErrorNotFound
	}
	delete(f.s.actions, token)
	return t, nil
}

type fakeProfiles struct{ s *memStore }

func (f fakeProfiles) Get(_ context.Context, id string) (*models.Profile, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.profiles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p.Clone(), nil
}

func (f fakeProfiles) Upsert(_ context.Context, p *models.Profile) (*models.Profile, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.profiles[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (f fakeProfiles) Update(_ context.Context, id string, _ models.ProfilePatch) (*models.Profile, error) {
	return nil, common.ErrorNotFound
}

type fakeRepoManager struct{ s *memStore }

func (m fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return fakeUsers{m.s} }
func (m fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return fakeRefresh{m.s} }
func (m fakeRepoManager) ActionTokens(dbx.DBTX) actiontokens.Repository   { return fakeActions{m.s} }
func (m fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository           { return fakeProfiles{m.s} }

type memStorage struct {
	mu     sync.Mutex
	stored *StoredSession
}

func (m *memStorage) Load(context.Context) (*StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return nil, nil
	}
	c := *m.stored
	return &c, nil
}

func (m *memStorage) Save(_ context.Context, s *StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	m.stored = &c
	return nil
}

func (m *memStorage) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (r *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingMailer) last(t *testing.T) mailer.Message {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.sent)
	return r.sent[len(r.sent)-1]
}

// tokenFrom extracts the token query parameter of the link in body.
func tokenFrom(t *testing.T, body string) string {
	t.Helper()
	for _, line := range strings.Split(body, "\n") {
		if u, err := url.Parse(line); err == nil && u.Query().Get("token") != "" {
			return u.Query().Get("token")
		}
	}
	t.Fatalf("no token link in %q", body)
	return ""
}

type harness struct {
	p       *Provider
	store   *memStore
	storage *memStorage
	mail    *recordingMailer
	clock   *time.Time
	events  *[]models.AuthEvent
}

func newHarness(t *testing.T, mutate ...func(*Config)) *harness {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	cfg := Config{
		JWTSecret:       []byte("test-secret"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		ActionTokenTTL:  time.Hour,
		SiteURL:         "http://localhost:3000/",
	}
	for _, m := range mutate {
		m(&cfg)
	}

	h := &harness{
		store:   newMemStore(),
		storage: &memStorage{},
		mail:    &recordingMailer{},
	}
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	h.clock = &now
	h.p = New(db, fakeRepoManager{h.store}, h.storage, h.mail, logging.Nop(), cfg)
	h.p.now = func() time.Time { return *h.clock }

	var events []models.AuthEvent
	h.events = &events
	sub := h.p.SubscribeToSessionChanges(func(e models.AuthEvent) { events = append(events, e) })
	t.Cleanup(sub.Unsubscribe)
	return h
}

func (h *harness) advance(d time.Duration) { *h.clock = h.clock.Add(d) }

func (h *harness) eventTypes() []models.AuthEventType {
	var out []models.AuthEventType
	for _, e := range *h.events {
		out = append(out, e.Type)
	}
	return out
}

// registerVerified signs up email and confirms it.
func (h *harness) registerVerified(t *testing.T, email, password, name string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.p.SignUp(ctx, email, password, name))
	require.NoError(t, h.p.VerifyEmail(ctx, tokenFrom(t, h.mail.last(t).Body)))
}
