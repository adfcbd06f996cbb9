package audit

import (
	"context"
	"sync"
	"time"

	"vetblood/pkg/domain"
)

// InMemoryStore keeps audit entries in memory for unit tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorID domain.UserID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if e.ActorID == actorID {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every stored entry, for test assertions.
func (s *InMemoryStore) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
