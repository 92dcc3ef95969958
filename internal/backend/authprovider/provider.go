package authprovider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/backend/auth"
	"github.com/dmitrijs2005/hrmis/internal/backend/mailer"
	bmodels "github.com/dmitrijs2005/hrmis/internal/backend/models"
	"github.com/dmitrijs2005/hrmis/internal/backend/repositories/repomanager"
	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/client/remote"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/cryptox"
	"github.com/dmitrijs2005/hrmis/internal/dbx"
	"github.com/dmitrijs2005/hrmis/internal/logging"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

type Config struct {
	JWTSecret          []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	ActionTokenTTL     time.Duration
	SiteURL            string
	LoginRatePerMinute int
}

// Provider implements remote.AuthProvider and remote.AccountManager.
type Provider struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	storage SessionStorage
	mailer  mailer.Mailer
	logger  logging.Logger
	cfg     Config
	now     func() time.Time

	events  *remote.Broadcaster
	limiter *loginLimiter

	// mu serializes every change of the stored session together with its
	// notification.
	mu sync.Mutex
}

var (
	_ remote.AuthProvider   = (*Provider)(nil)
	_ remote.AccountManager = (*Provider)(nil)
)

func New(db *sql.DB, repos repomanager.RepositoryManager, storage SessionStorage, m mailer.Mailer, logger logging.Logger, cfg Config) *Provider {
	return &Provider{
		db:      db,
		repos:   repos,
		storage: storage,
		mailer:  m,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
		events:  remote.NewBroadcaster(),
		limiter: newLoginLimiter(cfg.LoginRatePerMinute),
	}
}

func (p *Provider) SubscribeToSessionChanges(h remote.SessionHandler) remote.Subscription {
	return p.events.Subscribe(h)
}

// GetCurrentSession restores the stored session. An expired access token
// is refreshed transparently; a session the backend no longer honours is
// cleared and reported as signed out.
func (p *Provider) GetCurrentSession(ctx context.Context) (*models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}

	claims, err := auth.ParseTokenAt(stored.AccessToken, p.cfg.JWTSecret, p.now())
	switch {
	case err == nil:
		return sessionFromClaims(claims), nil
	case errors.Is(err, common.ErrTokenExpired):
		sess, err := p.refreshLocked(ctx, stored)
		if err != nil {
			if isDead(err) {
				return nil, p.clearLocked(ctx, models.EventSignedOut)
			}
			return nil, err
		}
		return sess, nil
	default:
		p.logger.Warn(ctx, "stored access token rejected, clearing session", "error", err)
		return nil, p.clearLocked(ctx, models.EventSignedOut)
	}
}

// SignInWithCredentials verifies email and password and starts a session.
func (p *Provider) SignInWithCredentials(ctx context.Context, email, password string) (*models.Session, error) {
	email = normalizeEmail(email)
	if !p.limiter.allow(email, p.now()) {
		return nil, common.ErrRateLimited
	}

	user, err := p.repos.Users(p.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// same work as a real check so timing does not reveal unknown emails
			cryptox.HashPassword([]byte(password), cryptox.NewSalt())
			return nil, common.ErrInvalidCredentials
		}
		return nil, unavailable(err)
	}
	if !cryptox.VerifyPassword([]byte(password), user.Salt, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	if !user.Verified() {
		return nil, common.ErrEmailUnverified
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	out, err := dbx.WithTxValue(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) (*issued, error) {
		return p.issue(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}
	if err := p.storage.Save(ctx, out.stored); err != nil {
		return nil, err
	}

	p.logger.Info(ctx, "signed in", "user_id", user.ID)
	p.events.Emit(models.AuthEvent{Type: models.EventSignedIn, Session: out.session})
	return out.session, nil
}

// SignOut revokes the refresh token and forgets the stored session. The
// local session is cleared even if the backend cannot be reached.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.storage.Load(ctx)
	if err != nil {
		return err
	}
	if stored == nil {
		return nil
	}

	var revokeErr error
	if err := p.repos.RefreshTokens(p.db).Delete(ctx, stored.RefreshToken); err != nil {
		p.logger.Warn(ctx, "refresh token not revoked", "error", err)
		revokeErr = unavailable(err)
	}
	if err := p.clearLocked(ctx, models.EventSignedOut); err != nil {
		return err
	}
	return revokeErr
}

type issued struct {
	session *models.Session
	stored  *StoredSession
}

// issue mints a token pair for user inside tx.
func (p *Provider) issue(ctx context.Context, tx dbx.DBTX, user *bmodels.User) (*issued, error) {
	now := p.now()
	access, expires, err := auth.GenerateToken(auth.Identity{
		UserID:        user.ID,
		Email:         user.Email,
		EmailVerified: user.Verified(),
		UserCreatedAt: user.CreatedAt,
	}, p.cfg.JWTSecret, now, p.cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh := common.NewOpaqueToken(32)
	if err := p.repos.RefreshTokens(tx).Create(ctx, user.ID, refresh, now.Add(p.cfg.RefreshTokenTTL)); err != nil {
		return nil, unavailable(err)
	}

	sess := &models.Session{
		UserID:        user.ID,
		Email:         user.Email,
		EmailVerified: user.Verified(),
		CreatedAt:     user.CreatedAt,
		ExpiresAt:     expires,
	}
	return &issued{session: sess, stored: &StoredSession{AccessToken: access, RefreshToken: refresh}}, nil
}

// clearLocked forgets the stored session and announces event.
func (p *Provider) clearLocked(ctx context.Context, event models.AuthEventType) error {
	if err := p.storage.Clear(ctx); err != nil {
		return err
	}
	p.events.Emit(models.AuthEvent{Type: event})
	return nil
}

// isDead reports whether err means the backend no longer honours the
// stored session.
func isDead(err error) bool {
	return errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired)
}

func sessionFromClaims(c *auth.Claims) *models.Session {
	return &models.Session{
		UserID:        c.UserID,
		Email:         c.Email,
		EmailVerified: c.EmailVerified,
		CreatedAt:     c.CreatedAt(),
		ExpiresAt:     c.Expiry(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return common.NewValidationError("Please enter a valid email address")
	}
	if len(password) < MinPasswordLength {
		return common.NewValidationError(fmt.Sprintf("Password should be at least %d characters", MinPasswordLength))
	}
	return nil
}

// unavailable marks a backend failure as a transport error.
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
}
