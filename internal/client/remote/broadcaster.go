package remote

import (
	"sync"

	"github.com/dmitrijs2005/hrmis/internal/client/models"
)

// Broadcaster fans session-change events out to subscribers. Emits are
// serialized, so every subscriber observes events in emission order.
type Broadcaster struct {
	emitMu sync.Mutex

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscription
}

// NewBroadcaster returns an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uint64]*subscription)}
}

type subscription struct {
	b       *Broadcaster
	id      uint64
	handler SessionHandler

	mu     sync.Mutex
	closed bool
}

// Subscribe registers handler until the returned Subscription is released.
func (b *Broadcaster) Subscribe(handler SessionHandler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	s := &subscription{b: b, id: b.nextID, handler: handler}
	b.subs[s.id] = s
	return s
}

// Emit delivers event synchronously to every live subscriber.
func (b *Broadcaster) Emit(event models.AuthEvent) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()

	b.mu.Lock()
	targets := make([]*subscription, 0, len(b.subs))
	for _, s := range b.subs {
		targets = append(targets, s)
	}
	b.mu.Unlock()

	for _, s := range targets {
		s.deliver(event)
	}
}

// Len returns the number of live subscriptions.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (s *subscription) deliver(event models.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.handler(event)
}

// Unsubscribe waits for an in-progress delivery to this subscriber to
// finish, then detaches it.
func (s *subscription) Unsubscribe() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.b.mu.Lock()
	delete(s.b.subs, s.id)
	s.b.mu.Unlock()
}
