package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/hrmis/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// resetPath is the location emailed reset links lead back to.
const resetPath = "/reset-password"

var errPasswordMismatch = common.NewValidationError("Passwords do not match")

// Register prompts for a full name, an email and a password and creates
// the account. The user has to confirm the email before the first login.
func (a *App) Register(ctx context.Context) error {
	fullName, err := getSimpleText(a.reader, "Enter full name (optional)", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(password)

	if err := a.accounts.SignUp(ctx, email, string(password), fullName); err != nil {
		a.println(common.UserMessage(err))
		return err
	}

	a.println("Registration successful! Please check your email to verify your account.")
	return nil
}

// Login authenticates and loads the user's profile. A profile that cannot
// be loaded makes the session unusable, so the user is signed out again.
// On success the view that sent the user to login is opened, or the
// dashboard.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(password)

	sess, err := a.session.SignIn(ctx, email, string(password))
	if err != nil {
		a.logger.Info(ctx, "login rejected", "error", err)
		a.println(common.UserMessage(err))
		return err
	}

	if _, err := a.profiles.Load(ctx, sess.UserID); err != nil {
		a.logger.Error(ctx, "profile load failed after login", "user_id", sess.UserID, "error", err)
		a.unmount()
		_ = a.session.SignOut(ctx)
		a.profiles.Reset()
		a.println("Could not load your profile, please log in again")
		return err
	}

	target := a.returnTo
	a.returnTo = ""
	if target == "" {
		target = DashboardPath
	}
	return a.open(ctx, target)
}

// Logout ends the session and drops the local profile copy. The local
// state is cleared even when the provider call fails.
func (a *App) Logout(ctx context.Context) error {
	a.unmount()
	err := a.session.SignOut(ctx)
	a.profiles.Reset()
	a.returnTo = ""
	if err != nil {
		a.println(common.UserMessage(err))
		return err
	}
	a.println("Logged out")
	return nil
}

// ForgotPassword requests a reset link. The answer does not reveal whether
// the email is registered.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	if err := a.accounts.RequestPasswordReset(ctx, email, strings.TrimRight(a.config.SiteURL, "/")+resetPath); err != nil {
		a.println(common.UserMessage(err))
		return err
	}

	a.println("If an account exists for that email, a password reset link has been sent.")
	return nil
}

// ResetPassword sets a new password using the token from a reset link.
func (a *App) ResetPassword(ctx context.Context, args []string) error {
	token, err := a.tokenArg(args)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(password)

	confirm, err := getPassword(a.reader, "Confirm new password", a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(confirm)

	if string(password) != string(confirm) {
		a.println(common.UserMessage(errPasswordMismatch))
		return errPasswordMismatch
	}

	if err := a.accounts.ResetPassword(ctx, token, string(password)); err != nil {
		a.println(common.UserMessage(err))
		return err
	}

	a.println("Password updated. Please log in with your new password.")
	return nil
}

// VerifyEmail confirms the address using the token from a verification link.
func (a *App) VerifyEmail(ctx context.Context, args []string) error {
	token, err := a.tokenArg(args)
	if err != nil {
		return err
	}

	if err := a.accounts.VerifyEmail(ctx, token); err != nil {
		a.println(common.UserMessage(err))
		return err
	}

	a.println("Email verified! You can now log in.")
	return nil
}

func (a *App) tokenArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	token, err := getSimpleText(a.reader, "Enter token", a.out)
	if err != nil {
		return "", err
	}
	if token == "" {
		a.println(common.UserMessage(common.ErrInvalidToken))
		return "", common.ErrInvalidToken
	}
	return token, nil
}
