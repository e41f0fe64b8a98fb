package session

import (
	"context"
	"sync"
	"time"

	"github.com/floorquote/backend/internal/models"
)

type memoryEntry struct {
	analysis models.Analysis
	expires  time.Time
}

// MemoryStore is the in-process Store used when Redis is not configured.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: map[string]memoryEntry{}}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (models.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return models.Analysis{}, ErrNotFound
	}
	if s.expired(e) {
		delete(s.entries, sessionID)
		return models.Analysis{}, ErrNotFound
	}
	return e.analysis, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, a models.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memoryEntry{analysis: a}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.entries[sessionID] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Sweep drops expired entries and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}
