package clinic

import (
	"context"
	"sort"
	"sync"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items map[domain.ClinicID]*Clinic
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[domain.ClinicID]*Clinic)}
}

func (s *InMemoryStore) Create(_ context.Context, c *Clinic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.items[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.ClinicID) (*Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Clinic, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, c *Clinic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *c
	s.items[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.ClinicID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
