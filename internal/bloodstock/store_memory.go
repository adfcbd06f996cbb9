package bloodstock

import (
	"context"
	"sort"
	"sync"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items map[domain.StockID]*Stock
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[domain.StockID]*Stock)}
}

func (s *InMemoryStore) Create(_ context.Context, st *Stock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.items[st.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.StockID) (*Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Stock, 0, len(s.items))
	for _, st := range s.items {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) HasActive(_ context.Context, clinicID domain.ClinicID, bloodType string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.items {
		if st.ClinicID == clinicID && st.BloodType == bloodType && st.Status == domain.StockActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) Update(_ context.Context, st *Stock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[st.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *st
	s.items[st.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.StockID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
