package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sliding window timestamps in process memory. Suitable
// for a single API instance; a multi-instance deployment would need a
// shared backend behind the same Store interface.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry

	sweepInterval time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
}

// entry remembers the window it was last used with so the sweeper can
// tell when all of its timestamps have aged out.
type entry struct {
	stamps []time.Time
	window time.Duration
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithSweepInterval sets how often idle keys are swept out.
func WithSweepInterval(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// NewMemoryStore creates an in-memory store. A background sweeper removes
// keys whose recorded activity has fully aged out; call Close to stop it.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries:       make(map[string]*entry),
		sweepInterval: time.Minute,
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.sweepLoop()

	return s
}

func (s *MemoryStore) RecordIfAllowed(ctx context.Context, key string, at time.Time, window time.Duration, limit, n int) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.window = window
	e.prune(at.Add(-window))

	if len(e.stamps)+n > limit {
		return false, len(e.stamps), nil
	}

	for range n {
		e.stamps = append(e.stamps, at)
	}
	return true, len(e.stamps), nil
}

func (s *MemoryStore) CountInWindow(ctx context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return 0, nil
	}
	e.prune(time.Now().Add(-window))
	return len(e.stamps), nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Close stops the background sweeper. Idempotent.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}

// prune drops timestamps at or before cutoff. Stamps are appended in
// order, so the slice stays sorted and a prefix cut suffices.
func (e *entry) prune(cutoff time.Time) {
	idx := 0
	for idx < len(e.stamps) && !e.stamps[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		e.stamps = append(e.stamps[:0], e.stamps[idx:]...)
	}
}

func (s *MemoryStore) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		e.prune(now.Add(-e.window))
		if len(e.stamps) == 0 {
			delete(s.entries, key)
		}
	}
}
