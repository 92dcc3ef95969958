package authprovider

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/backend/auth"
	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/dbx"
)

// refreshTimeout bounds one background refresh.
const refreshTimeout = 10 * time.Second

// Refresh rotates the refresh token and issues a new access token. If the
// backend rejects the stored refresh token the session is cleared and the
// rejection returned.
func (p *Provider) Refresh(ctx context.Context) (*models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, common.ErrNoSession
	}

	sess, err := p.refreshLocked(ctx, stored)
	if err != nil {
		if isDead(err) {
			if cerr := p.clearLocked(ctx, models.EventSignedOut); cerr != nil {
				return nil, cerr
			}
		}
		return nil, err
	}
	return sess, nil
}

func (p *Provider) refreshLocked(ctx context.Context, stored *StoredSession) (*models.Session, error) {
	// A nil result with a nil error means the token was expired; its
	// removal still commits.
	out, err := dbx.WithTxValue(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) (*issued, error) {
		rt, err := p.repos.RefreshTokens(tx).Take(ctx, stored.RefreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrInvalidToken
			}
			return nil, unavailable(err)
		}
		if rt.Expires.Before(p.now()) {
			return nil, nil
		}
		user, err := p.repos.Users(tx).GetByID(ctx, rt.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrInvalidToken
			}
			return nil, unavailable(err)
		}
		return p.issue(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, common.ErrTokenExpired
	}
	if err := p.storage.Save(ctx, out.stored); err != nil {
		return nil, err
	}

	p.logger.Debug(ctx, "token refreshed", "user_id", out.session.UserID)
	p.events.Emit(models.AuthEvent{Type: models.EventTokenRefreshed, Session: out.session})
	return out.session, nil
}

// StartAutoRefresh refreshes the session shortly before its access token
// expires, checking every interval until ctx is done. Run it in its own
// goroutine.
func (p *Provider) StartAutoRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.refreshIfDue(ctx, 2*interval)
		case <-ctx.Done():
			return
		}
	}
}

// refreshIfDue refreshes when the access token expires within margin.
func (p *Provider) refreshIfDue(ctx context.Context, margin time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.storage.Load(ctx)
	if err != nil {
		p.logger.Warn(ctx, "auto refresh: load session", "error", err)
		return
	}
	if stored == nil {
		return
	}

	claims, err := auth.ParseTokenAt(stored.AccessToken, p.cfg.JWTSecret, p.now())
	if err == nil && claims.Expiry().Sub(p.now()) > margin {
		return
	}
	if err != nil && !errors.Is(err, common.ErrTokenExpired) {
		p.logger.Warn(ctx, "auto refresh: stored access token rejected", "error", err)
		if cerr := p.clearLocked(ctx, models.EventSignedOut); cerr != nil {
			p.logger.Error(ctx, "auto refresh: clear session", "error", cerr)
		}
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	if _, err := p.refreshLocked(opCtx, stored); err != nil {
		p.logger.Warn(ctx, "auto refresh failed", "error", err)
		if isDead(err) {
			if cerr := p.clearLocked(ctx, models.EventSignedOut); cerr != nil {
				p.logger.Error(ctx, "auto refresh: clear session", "error", cerr)
			}
		}
	}
}
