package bloodsearch

import (
	"context"
	"sort"
	"sync"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items map[domain.SearchID]*Search
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[domain.SearchID]*Search)}
}

func (s *InMemoryStore) Create(_ context.Context, sr *Search) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sr
	cp.QualifyingClinics = append([]domain.ClinicID(nil), sr.QualifyingClinics...)
	s.items[sr.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.SearchID) (*Search, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sr, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sr
	cp.QualifyingClinics = append([]domain.ClinicID(nil), sr.QualifyingClinics...)
	return &cp, nil
}

func (s *InMemoryStore) ListByRequester(_ context.Context, requesterID domain.UserID) ([]Search, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Search
	for _, sr := range s.items {
		if sr.RequesterID == requesterID {
			cp := *sr
			cp.QualifyingClinics = append([]domain.ClinicID(nil), sr.QualifyingClinics...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, sr *Search) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[sr.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *sr
	cp.QualifyingClinics = append([]domain.ClinicID(nil), sr.QualifyingClinics...)
	s.items[sr.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.SearchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
