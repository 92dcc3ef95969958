package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/client/config"
	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/client/profile"
	"github.com/dmitrijs2005/hrmis/internal/client/remote"
	"github.com/dmitrijs2005/hrmis/internal/client/session"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/logging"
)

type fakeUser struct {
	id       string
	password string
	verified bool
}

type fakeProvider struct {
	*remote.Broadcaster

	mu      sync.Mutex
	users   map[string]fakeUser
	current *models.Session
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{Broadcaster: remote.NewBroadcaster(), users: map[string]fakeUser{}}
}

func (f *fakeProvider) GetCurrentSession(context.Context) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeProvider) SubscribeToSessionChanges(h remote.SessionHandler) remote.Subscription {
	return f.Subscribe(h)
}

func (f *fakeProvider) SignInWithCredentials(_ context.Context, email, password string) (*models.Session, error) {
	f.mu.Lock()
	u, ok := f.users[email]
	if !ok || u.password != password {
		f.mu.Unlock()
		return nil, common.ErrInvalidCredentials
	}
	if !u.verified {
		f.mu.Unlock()
		return nil, common.ErrEmailUnverified
	}
	s := &models.Session{UserID: u.id, Email: email, EmailVerified: true, ExpiresAt: time.Now().Add(time.Hour)}
	f.current = s
	f.mu.Unlock()

	f.Emit(models.AuthEvent{Type: models.EventSignedIn, Session: s})
	return s, nil
}

func (f *fakeProvider) SignOut(context.Context) error {
	f.mu.Lock()
	f.current = nil
	f.mu.Unlock()
	f.Emit(models.AuthEvent{Type: models.EventSignedOut})
	return nil
}

func (f *fakeProvider) RequestPasswordReset(context.Context, string, string) error { return nil }

type fakeAccounts struct {
	signUp    []string
	signUpErr error

	resetEmail, resetURL string

	resetToken, resetPassword string
	resetErr                  error

	verifyToken string
	verifyErr   error
}

func (f *fakeAccounts) SignUp(_ context.Context, email, password, fullName string) error {
	f.signUp = []string{email, password, fullName}
	return f.signUpErr
}

func (f *fakeAccounts) VerifyEmail(_ context.Context, token string) error {
	f.verifyToken = token
	return f.verifyErr
}

func (f *fakeAccounts) ResetPassword(_ context.Context, token, newPassword string) error {
	f.resetToken, f.resetPassword = token, newPassword
	return f.resetErr
}

func (f *fakeAccounts) RequestPasswordReset(_ context.Context, email, returnURL string) error {
	f.resetEmail, f.resetURL = email, returnURL
	return nil
}

type fakeRecords struct {
	mu      sync.Mutex
	rows    map[string]*models.Profile
	upserts int
	getErr  error

	// set before the write starts; UpdateRecord parks on block
	block   chan struct{}
	started chan struct{}
}

func (f *fakeRecords) GetRecord(_ context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p.Clone(), nil
}

func (f *fakeRecords) UpsertRecord(_ context.Context, p *models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.rows[p.ID] = p.Clone()
	return p.Clone(), nil
}

func (f *fakeRecords) UpdateRecord(_ context.Context, id string, patch models.ProfilePatch) (*models.Profile, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if patch.FullName != nil {
		p.FullName = models.Ptr(*patch.FullName)
	}
	if patch.Birthday != nil {
		p.Birthday = models.Ptr(*patch.Birthday)
	}
	if patch.Age != nil {
		p.Age = models.Ptr(*patch.Age)
	}
	if patch.AvatarRef != nil {
		p.AvatarRef = models.Ptr(*patch.AvatarRef)
	}
	p.UpdatedAt = patch.UpdatedAt
	return p.Clone(), nil
}

type fakeObjects struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	uploadErr error
}

func (f *fakeObjects) UploadBlob(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.blobs[key] = data
	return nil
}

func (f *fakeObjects) ResolvePublicURL(_ context.Context, key string) (string, error) {
	return "https://cdn.example.com/avatars/" + key, nil
}

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type harness struct {
	app      *App
	out      *bytes.Buffer
	provider *fakeProvider
	accounts *fakeAccounts
	records  *fakeRecords
	objects  *fakeObjects
	session  *session.State
}

// newHarness builds an App over in-memory fakes. input feeds both the REPL
// and the prompts; passwords are read as plain lines.
func newHarness(t *testing.T, input string) *harness {
	t.Helper()

	h := &harness{
		out:      &bytes.Buffer{},
		provider: newFakeProvider(),
		accounts: &fakeAccounts{},
		records:  &fakeRecords{rows: map[string]*models.Profile{}},
		objects:  &fakeObjects{blobs: map[string][]byte{}},
	}
	h.provider.users["ada@example.com"] = fakeUser{id: "u-ada", password: "secret", verified: true}
	h.provider.users["new@example.com"] = fakeUser{id: "u-new", password: "secret"}

	h.session = session.New(h.provider, logging.Nop())
	t.Cleanup(h.session.Close)

	syncer := profile.NewSynchronizer(h.records, h.objects, logging.Nop(),
		profile.WithClock(func() time.Time { return testNow }))

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.AvatarMaxSide = 64
	cfg.SiteURL = "https://hr.example.com/"

	h.app = NewApp(cfg, h.session, h.accounts, syncer, logging.Nop(), strings.NewReader(input), h.out)

	origTTY := isTerminal
	isTerminal = func(int) bool { return false }
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(h.out, a...) }
	t.Cleanup(func() {
		isTerminal = origTTY
		printlnFn = origPrint
	})

	return h
}

func (h *harness) feed(input string) {
	h.app.reader = bufio.NewReader(strings.NewReader(input))
}
