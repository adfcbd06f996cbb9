package pet

import (
	"context"
	"sort"
	"sync"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items map[domain.PetID]*Pet
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[domain.PetID]*Pet)}
}

func (s *InMemoryStore) Create(_ context.Context, p *Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.PetID) (*Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID domain.UserID) ([]Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Pet
	for _, p := range s.items {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, p *Pet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.PetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
