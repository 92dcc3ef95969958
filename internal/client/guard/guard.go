// Package guard gates authenticated-only views. A Guard checks the current
// session once, follows session-change notifications while it is held, and
// fails closed: a missing session, an expired one, or a provider error all
// produce a redirect to the login view.
package guard

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/client/remote"
	"github.com/dmitrijs2005/hrmis/internal/logging"
)

// Decision is the guard's verdict for the protected view.
type Decision int

const (
	// Pending means the initial check has not completed; render a neutral
	// waiting state, never protected content.
	Pending Decision = iota
	Allow
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// DefaultLoginPath is where denied viewers are sent.
const DefaultLoginPath = "/login"

// Access is the guard's current verdict. Session is set only for Allow;
// RedirectTo and ReturnTo only for Redirect.
type Access struct {
	Decision   Decision
	Session    *models.Session
	RedirectTo string
	// ReturnTo is the originally requested location, so that a later
	// successful login can send the viewer back.
	ReturnTo string
}

// Guard tracks access for one mounted view. Create it with New, call
// CheckAccess, and Release it when the view goes away.
type Guard struct {
	source    remote.SessionSource
	from      string
	loginPath string
	logger    logging.Logger
	now       func() time.Time

	mu       sync.Mutex
	access   Access
	seq      uint64
	sub      remote.Subscription
	released bool
	updates  chan Access
}

// Option customises a Guard.
type Option func(*Guard)

// WithLoginPath overrides DefaultLoginPath.
func WithLoginPath(path string) Option {
	return func(g *Guard) { g.loginPath = path }
}

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// New returns a Pending guard for the view located at from.
func New(source remote.SessionSource, from string, logger logging.Logger, opts ...Option) *Guard {
	g := &Guard{
		source:    source,
		from:      from,
		loginPath: DefaultLoginPath,
		logger:    logger,
		now:       time.Now,
		access:    Access{Decision: Pending},
		updates:   make(chan Access, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckAccess subscribes to session changes (once) and queries the current
// session. A notification delivered while the query is in flight is newer
// information, so the query result is discarded in that case. Calling
// CheckAccess again re-evaluates access with a fresh query.
func (g *Guard) CheckAccess(ctx context.Context) Access {
	g.mu.Lock()
	if g.released {
		a := g.access
		g.mu.Unlock()
		return a
	}
	if g.sub == nil {
		g.sub = g.source.SubscribeToSessionChanges(g.onChange)
	}
	startSeq := g.seq
	g.mu.Unlock()

	session, err := g.source.GetCurrentSession(ctx)
	if err != nil {
		g.logger.Warn(ctx, "session check failed, denying access", "from", g.from, "error", err)
		session = nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.released && g.seq == startSeq {
		g.apply(session)
	}
	return g.access
}

// Access returns the current verdict without querying the provider.
func (g *Guard) Access() Access {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.access
}

// Updates delivers verdict changes, the initial check included. Only the
// latest unread verdict is kept. The channel is closed by Release.
func (g *Guard) Updates() <-chan Access {
	return g.updates
}

// Release detaches the guard from session notifications. No notification
// is acted on after Release returns. It is safe to call more than once.
func (g *Guard) Release() {
	g.mu.Lock()
	if g.released {
		g.mu.Unlock()
		return
	}
	g.released = true
	close(g.updates)
	sub := g.sub
	g.sub = nil
	g.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

func (g *Guard) onChange(event models.AuthEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.released {
		return
	}
	g.seq++
	g.apply(event.Session)
}

// apply must be called with g.mu held.
func (g *Guard) apply(session *models.Session) {
	if session != nil && !session.Expired(g.now()) {
		g.access = Access{Decision: Allow, Session: session}
	} else {
		g.access = Access{Decision: Redirect, RedirectTo: g.loginPath, ReturnTo: g.from}
	}
	g.publish(g.access)
}

func (g *Guard) publish(a Access) {
	select {
	case <-g.updates:
	default:
	}
	g.updates <- a
}

// Mount checks access for the view at from and runs view with the session
// only when access is allowed. It returns the verdict that gated the view.
// The returned guard keeps following session changes for the mounted view
// until the caller releases it; after a denial it is already released.
func Mount(ctx context.Context, source remote.SessionSource, from string, logger logging.Logger,
	view func(ctx context.Context, session *models.Session) error, opts ...Option) (*Guard, Access, error) {

	g := New(source, from, logger, opts...)
	access := g.CheckAccess(ctx)
	if access.Decision != Allow {
		g.Release()
		return g, access, nil
	}
	ctx = logging.ContextWith(ctx, "user_id", access.Session.UserID, "view", from)
	return g, access, view(ctx, access.Session)
}
