// Package session holds the client's shared session context: one
// subscription to the auth provider, a cached copy of the current session
// and a fan-out of change notifications to views and guards.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/client/models"
	"github.com/dmitrijs2005/hrmis/internal/client/remote"
	"github.com/dmitrijs2005/hrmis/internal/logging"
)

// State implements remote.SessionSource on top of an AuthProvider, so
// guards read the cached session instead of querying the provider on
// every view.
type State struct {
	provider remote.AuthProvider
	logger   logging.Logger
	now      func() time.Time

	fanout *remote.Broadcaster
	sub    remote.Subscription

	mu      sync.Mutex
	loaded  bool
	seq     uint64
	current *models.Session
	closed  bool
}

func New(provider remote.AuthProvider, logger logging.Logger) *State {
	s := &State{
		provider: provider,
		logger:   logger,
		now:      time.Now,
		fanout:   remote.NewBroadcaster(),
	}
	s.sub = provider.SubscribeToSessionChanges(s.onEvent)
	return s
}

func (s *State) onEvent(event models.AuthEvent) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	s.loaded = true
	s.current = event.Session
	s.mu.Unlock()

	s.logger.Debug(context.Background(), "session changed", "event", string(event.Type))
	s.fanout.Emit(event)
}

// GetCurrentSession returns the cached session, querying the provider on
// first use and whenever the cached session has expired. A notification
// that lands while the query is in flight takes precedence over its result.
func (s *State) GetCurrentSession(ctx context.Context) (*models.Session, error) {
	s.mu.Lock()
	if s.loaded && (s.current == nil || !s.current.Expired(s.now())) {
		cur := s.current
		s.mu.Unlock()
		return cur, nil
	}
	seq := s.seq
	s.mu.Unlock()

	sess, err := s.provider.GetCurrentSession(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		return s.current, nil
	}
	s.loaded = true
	s.current = sess
	return sess, nil
}

// SubscribeToSessionChanges registers h for every event received from the
// provider after this call.
func (s *State) SubscribeToSessionChanges(h remote.SessionHandler) remote.Subscription {
	return s.fanout.Subscribe(h)
}

// CurrentUser returns the cached session without querying, nil if signed
// out or not yet known.
func (s *State) CurrentUser() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SignIn authenticates and caches the resulting session. The provider's
// SIGNED_IN notification reaches subscribers as well.
func (s *State) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	sess, err := s.provider.SignInWithCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.seq++
	s.loaded = true
	s.current = sess
	s.mu.Unlock()
	return sess, nil
}

// SignOut ends the session. The local copy is dropped even if the
// provider call fails, so a stale session is never shown as signed in.
func (s *State) SignOut(ctx context.Context) error {
	err := s.provider.SignOut(ctx)

	s.mu.Lock()
	s.seq++
	s.loaded = true
	s.current = nil
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn(ctx, "sign out failed", "error", err)
	}
	return err
}

// Close drops the provider subscription. Safe to call more than once.
func (s *State) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.sub.Unsubscribe()
}
