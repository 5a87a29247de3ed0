package repository

import (
	"context"
	"sync"
	"time"

	"github.com/xenking/efitness/internal/domain/cart"
)

var _ cart.Store = (*MemoryCartStore)(nil)

// MemoryCartStore keeps carts in process memory. Each session entry has its
// own mutex, so writers of different sessions never contend.
type MemoryCartStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*cartEntry
}

type cartEntry struct {
	mu      sync.Mutex
	cart    cart.Cart
	touched time.Time
	// dropped is set once the entry left the map; holders must look it up again.
	dropped bool
}

// NewMemoryCartStore returns a store whose carts expire ttl after their last
// write. A zero ttl keeps carts until they are cleared.
func NewMemoryCartStore(ttl time.Duration) *MemoryCartStore {
	return &MemoryCartStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*cartEntry),
	}
}

func (s *MemoryCartStore) entry(sessionID string) *cartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		e = &cartEntry{touched: s.now()}
		s.entries[sessionID] = e
	}
	return e
}

// lock returns the live entry of the session with its mutex held.
func (s *MemoryCartStore) lock(sessionID string) *cartEntry {
	for {
		e := s.entry(sessionID)
		e.mu.Lock()
		if !e.dropped {
			return e
		}
		e.mu.Unlock()
	}
}

func (s *MemoryCartStore) expired(e *cartEntry) bool {
	return s.ttl > 0 && s.now().Sub(e.touched) > s.ttl
}

// Get returns a copy of the session's cart. Unknown sessions get an empty
// cart without allocating an entry.
func (s *MemoryCartStore) Get(_ context.Context, sessionID string) (cart.Cart, error) {
	s.mu.Lock()
	e, ok := s.entries[sessionID]
	s.mu.Unlock()
	if !ok {
		return cart.Cart{}, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dropped || s.expired(e) {
		return cart.Cart{}, nil
	}
	return e.cart.Clone(), nil
}

// Update applies fn to a copy of the cart while holding the session lock
// and stores the copy when fn succeeds.
func (s *MemoryCartStore) Update(_ context.Context, sessionID string, fn func(c *cart.Cart) error) (cart.Cart, error) {
	e := s.lock(sessionID)
	defer e.mu.Unlock()

	if s.expired(e) {
		e.cart = cart.Cart{}
	}
	next := e.cart.Clone()
	if err := fn(&next); err != nil {
		return e.cart.Clone(), err
	}
	e.cart = next
	e.touched = s.now()
	return next.Clone(), nil
}

// Clear drops the session's cart.
func (s *MemoryCartStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	e, ok := s.entries[sessionID]
	delete(s.entries, sessionID)
	s.mu.Unlock()

	if ok {
		e.mu.Lock()
		e.cart = cart.Cart{}
		e.dropped = true
		e.mu.Unlock()
	}
	return nil
}

// Len reports the number of carts held.
func (s *MemoryCartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evict drops expired carts. Entries busy with a writer are left for the
// next pass.
func (s *MemoryCartStore) evict() {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		if s.expired(e) {
			e.dropped = true
			delete(s.entries, id)
		}
		e.mu.Unlock()
	}
}

// Run evicts expired carts every interval until ctx ends.
func (s *MemoryCartStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evict()
		}
	}
}
