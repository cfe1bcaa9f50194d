package cart

import (
	"sync"
	"sync/atomic"
	"time"

	"khoomi-api-io/storefront/pkg/models"
)

// Listener receives every snapshot a Store publishes, in dispatch order.
type Listener func(models.Cart)

// Commit persists a snapshot before the Store adopts it.
type Commit func(models.Cart) error

// Store owns one session's cart. Writers are serialized; Snapshot never blocks
// because each dispatch swaps in a whole new snapshot.
type Store struct {
	mu        sync.Mutex
	current   atomic.Pointer[models.Cart]
	listeners []Listener
	commit    Commit
	now       func() time.Time
}

// NewStore starts a session with initial as its cart.
func NewStore(initial models.Cart) *Store {
	s := &Store{now: time.Now}
	if initial.Items == nil {
		initial.Items = []models.CartLineItem{}
	}
	s.current.Store(&initial)
	return s
}

// WithClock replaces the time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// WithCommit makes every dispatch persist through commit first. A failed
// commit fails the dispatch.
func (s *Store) WithCommit(commit Commit) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit = commit
	return s
}

func (s *Store) Snapshot() models.Cart {
	return *s.current.Load()
}

// Dispatch applies a. On error, from the reducer or the commit, the current
// snapshot is left as it was and no listener is called.
func (s *Store) Dispatch(a Action) (models.Cart, Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, out, err := Reduce(*s.current.Load(), a, s.now())
	if err != nil {
		return s.Snapshot(), out, err
	}
	if s.commit != nil {
		if err := s.commit(next); err != nil {
			return s.Snapshot(), out, err
		}
	}
	s.current.Store(&next)
	for _, l := range s.listeners {
		l(next)
	}
	return next, out, nil
}

// Reset empties the cart at logout or after an order is placed.
func (s *Store) Reset() models.Cart {
	next, _, _ := s.Dispatch(Clear{})
	return next
}

// Subscribe registers l for future snapshots.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}
