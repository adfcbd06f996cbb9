package donation

import (
	"context"
	"sort"
	"sync"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	items map[domain.DonationID]*Donation
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[domain.DonationID]*Donation)}
}

func (s *InMemoryStore) Create(_ context.Context, d *Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.items[d.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.DonationID) (*Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.items[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID domain.UserID) ([]Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Donation
	for _, d := range s.items {
		if d.OwnerID == ownerID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, d *Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[d.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *d
	s.items[d.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.DonationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
