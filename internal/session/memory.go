package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/audiobot/core/logger"
)

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. A janitor goroutine sweeps
// expired entries so idle users do not leak.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]memoryEntry
	ttl     time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewMemoryStore builds a store with the given TTL and starts the sweeper.
// sweepInterval <= 0 falls back to one sweep per minute.
func NewMemoryStore(ttl, sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	s := &MemoryStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.janitor(sweepInterval)
	return s
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (Session, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok || now.After(e.expiresAt) {
		if ok {
			delete(s.entries, userID)
		}
		return Session{}, ErrNotFound
	}

	// A hit refreshes the TTL.
	e.expiresAt = now.Add(s.ttl)
	s.entries[userID] = e
	return e.session, nil
}

func (s *MemoryStore) Put(_ context.Context, sess Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.UserID] = memoryEntry{
		session:   sess,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

// Close stops the janitor. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done
	return nil
}

// Len reports the number of live entries, expired or not yet swept included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) janitor(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if removed := s.sweep(time.Now()); removed > 0 {
				logger.Debug(logger.Background(), "session", "sweep.done",
					slog.Int("removed", removed),
				)
			}
		}
	}
}

func (s *MemoryStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
