package authprovider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/backend/auth"
	"github.com/dmitrijs2005/hrmis/internal/backend/mailer"
	bmodels "github.com/dmitrijs2005/hrmis/internal/backend/models"
	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/common"
	"github.com/dmitrijs2005/hrmis/internal/cryptox"
	"github.com/dmitrijs2005/hrmis/internal/dbx"
	"github.com/google/uuid"
)

// Paths appended to SiteURL in mailed links.
const (
	VerifyPath = "/auth/verify"
	ResetPath  = "/reset-password"
)

// SignUp registers an unverified account and mails a confirmation link.
// A non-empty fullName seeds the user's profile row.
func (p *Provider) SignUp(ctx context.Context, email, password, fullName string) error {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	fullName = models.NormalizeName(fullName)

	salt := cryptox.NewSalt()
	user := &bmodels.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: cryptox.HashPassword([]byte(password), salt),
		Salt:         salt,
	}

	token, err := dbx.WithTxValue(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) (string, error) {
		created, err := p.repos.Users(tx).Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrAlreadyExists) {
				return "", err
			}
			return "", unavailable(err)
		}
		if fullName != "" {
			now := p.now().UTC()
			if _, err := p.repos.Profiles(tx).Upsert(ctx, &models.Profile{
				ID:        created.ID,
				FullName:  &fullName,
				UpdatedAt: now,
				CreatedAt: now,
			}); err != nil {
				return "", unavailable(err)
			}
		}
		return p.createActionToken(ctx, tx, created.ID, bmodels.PurposeVerifyEmail)
	})
	if err != nil {
		return err
	}

	link := withToken(strings.TrimRight(p.cfg.SiteURL, "/")+VerifyPath, token)
	if err := p.mailer.Send(ctx, mailer.VerificationMessage(email, link)); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	p.logger.Info(ctx, "user registered", "user_id", user.ID)
	return nil
}

// VerifyEmail consumes a confirmation token. If the confirmed user is the
// one signed in, the session is reissued with the verified flag set.
func (p *Provider) VerifyEmail(ctx context.Context, token string) error {
	at, err := p.consumeActionToken(ctx, token, bmodels.PurposeVerifyEmail)
	if err != nil {
		return err
	}
	if err := p.repos.Users(p.db).MarkEmailVerified(ctx, at.UserID, p.now().UTC()); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return unavailable(err)
	}
	p.logger.Info(ctx, "email verified", "user_id", at.UserID)

	p.mu.Lock()
	defer p.mu.Unlock()

	stored, claims := p.currentClaimsLocked(ctx)
	if claims == nil || claims.UserID != at.UserID {
		return nil
	}
	sess, err := p.refreshLocked(ctx, stored)
	if err != nil {
		p.logger.Warn(ctx, "session not reissued after verification", "error", err)
		return nil
	}
	p.events.Emit(models.AuthEvent{Type: models.EventUserUpdated, Session: sess})
	return nil
}

// RequestPasswordReset mails a reset link pointing at returnURL (SiteURL +
// ResetPath when empty). Unknown emails succeed silently.
func (p *Provider) RequestPasswordReset(ctx context.Context, email, returnURL string) error {
	email = normalizeEmail(email)
	user, err := p.repos.Users(p.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			p.logger.Debug(ctx, "password reset for unknown email")
			return nil
		}
		return unavailable(err)
	}

	token, err := p.createActionToken(ctx, p.db, user.ID, bmodels.PurposeResetPassword)
	if err != nil {
		return err
	}

	if returnURL == "" {
		returnURL = strings.TrimRight(p.cfg.SiteURL, "/") + ResetPath
	}
	if err := p.mailer.Send(ctx, mailer.ResetMessage(user.Email, withToken(returnURL, token))); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword sets a new password using a reset token and revokes every
// session of the user. A local session of that user ends with
// PASSWORD_RECOVERY.
func (p *Provider) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return common.NewValidationError(fmt.Sprintf("Password should be at least %d characters", MinPasswordLength))
	}

	at, err := p.consumeActionToken(ctx, token, bmodels.PurposeResetPassword)
	if err != nil {
		return err
	}

	salt := cryptox.NewSalt()
	hash := cryptox.HashPassword([]byte(newPassword), salt)
	err = dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := p.repos.Users(tx).UpdatePassword(ctx, at.UserID, hash, salt); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return unavailable(err)
		}
		if err := p.repos.RefreshTokens(tx).DeleteForUser(ctx, at.UserID); err != nil {
			return unavailable(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.logger.Info(ctx, "password reset", "user_id", at.UserID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, claims := p.currentClaimsLocked(ctx); claims != nil && claims.UserID == at.UserID {
		return p.clearLocked(ctx, models.EventPasswordRecovery)
	}
	return nil
}

func (p *Provider) createActionToken(ctx context.Context, db dbx.DBTX, userID string, purpose bmodels.ActionPurpose) (string, error) {
	token := common.NewOpaqueToken(32)
	if err := p.repos.ActionTokens(db).Create(ctx, &bmodels.ActionToken{
		Token:   token,
		UserID:  userID,
		Purpose: purpose,
		Expires: p.now().Add(p.cfg.ActionTokenTTL),
	}); err != nil {
		return "", unavailable(err)
	}
	return token, nil
}

func (p *Provider) consumeActionToken(ctx context.Context, token string, purpose bmodels.ActionPurpose) (*bmodels.ActionToken, error) {
	at, err := p.repos.ActionTokens(p.db).Consume(ctx, strings.TrimSpace(token), purpose)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, unavailable(err)
	}
	if at.Expires.Before(p.now()) {
		return nil, common.ErrTokenExpired
	}
	return at, nil
}

// currentClaimsLocked returns the stored session and its claims, ignoring
// expiry. Both are nil when there is no usable stored session.
func (p *Provider) currentClaimsLocked(ctx context.Context) (*StoredSession, *auth.Claims) {
	stored, err := p.storage.Load(ctx)
	if err != nil || stored == nil {
		return nil, nil
	}
	claims, err := auth.ParseTokenAt(stored.AccessToken, p.cfg.JWTSecret, time.Time{})
	if err != nil {
		return nil, nil
	}
	return stored, claims
}

func withToken(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
