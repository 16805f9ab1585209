package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRecentLimit caps Recent when the caller passes no limit.
const DefaultRecentLimit = 50

// InMemoryStore is a thread-safe, process-lifetime history used when a database is not configured.
// Every entry is kept until deleted; only the Recent view is capped.
type InMemoryStore struct {
	mu          sync.RWMutex
	entries     []HistoryEntry // oldest first
	recentLimit int
}

// NewInMemoryStore constructs an empty store whose Recent view returns at most recentLimit entries.
func NewInMemoryStore(recentLimit int) *InMemoryStore {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &InMemoryStore{entries: make([]HistoryEntry, 0), recentLimit: recentLimit}
}

// Append stores the entry, assigning an ID and timestamp when missing.
func (s *InMemoryStore) Append(_ context.Context, entry HistoryEntry) (HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	s.entries = append(s.entries, entry)
	return entry, nil
}

// Recent returns a snapshot of at most limit entries, newest first. A limit of
// zero or one above the store's cap yields the cap.
func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > s.recentLimit {
		limit = s.recentLimit
	}
	n := min(limit, len(s.entries))
	snapshot := make([]HistoryEntry, 0, n)
	for i := len(s.entries) - 1; i >= 0 && len(snapshot) < n; i-- {
		snapshot = append(snapshot, s.entries[i])
	}
	return snapshot, nil
}

// Get returns an entry by ID.
func (s *InMemoryStore) Get(_ context.Context, id string) (HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return HistoryEntry{}, ErrNotFound
}

// Delete removes an entry by ID.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for idx, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Close satisfies the Store interface.
func (s *InMemoryStore) Close() {}
