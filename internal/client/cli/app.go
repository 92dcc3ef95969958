package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/client/config"
	"github.com/dmitrijs2005/hrmis/internal/client/guard"
	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/client/profile"
	"github.com/dmitrijs2005/hrmis/internal/client/remote"
	"github.com/dmitrijs2005/hrmis/internal/client/session"
	"github.com/dmitrijs2005/hrmis/internal/logging"
)

// View locations. A guarded view that redirects to login remembers its
// location so that the next successful login returns to it.
const (
	DashboardPath = "/dashboard"
	ProfilePath   = "/profile"
	LoginPath     = "/login"
)

// MaxAvatarBytes caps the size of an avatar file read from disk.
const MaxAvatarBytes = 10 << 20

// Accounts is the account lifecycle surface used by the register, forgot,
// reset and verify commands.
type Accounts interface {
	remote.AccountManager
	RequestPasswordReset(ctx context.Context, email, returnURL string) error
}

type App struct {
	config   *config.Config
	session  *session.State
	accounts Accounts
	profiles *profile.Synchronizer
	logger   logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// returnTo is the view a denied guard asked to come back to.
	returnTo string
	// mounted guards the last rendered view; only the REPL goroutine
	// touches it.
	mounted *guard.Guard

	autoRefresh func(ctx context.Context, interval time.Duration)
	closers     []func() error
}

func NewApp(c *config.Config, s *session.State, accounts Accounts, profiles *profile.Synchronizer,
	logger logging.Logger, in io.Reader, out io.Writer) *App {
	return &App{
		config:   c,
		session:  s,
		accounts: accounts,
		profiles: profiles,
		logger:   logger,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run shows the dashboard if a session survived the last run, then starts
// the REPL. The token auto-refresh loop, when configured, runs until the
// REPL exits.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to hrmis (type 'help' for commands)")

	if a.autoRefresh != nil && a.config.RefreshInterval > 0 {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go a.autoRefresh(ctx, a.config.RefreshInterval)
	}

	if sess, err := a.session.GetCurrentSession(ctx); err == nil && sess != nil {
		_ = a.Dashboard(ctx)
	}

	runREPL(ctx, a, a.prompt, a.reader)
}

// prompt is the REPL status line. Session changes seen by the mounted view
// are reported first.
func (a *App) prompt() string {
	a.followView()
	return a.getStatus()
}

// Close releases what Bootstrap opened, in reverse order.
func (a *App) Close() error {
	a.unmount()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.session.CurrentUser() != nil
}

func (a *App) getStatus() string {
	s := ""
	if u := a.session.CurrentUser(); u != nil {
		s = u.Email
	}
	if st := a.profiles.State(); st != profile.Idle {
		s = strings.TrimSpace(s + " " + st.String())
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// ensureProfile loads the profile of the signed-in user unless it is
// already the local copy.
func (a *App) ensureProfile(ctx context.Context, sess *models.Session) (*models.Profile, error) {
	if p := a.profiles.Profile(); p != nil && p.ID == sess.UserID {
		return p, nil
	}
	return a.profiles.Load(ctx, sess.UserID)
}
