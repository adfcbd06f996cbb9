package user

import (
	"context"
	"sync"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
)

// InMemoryStore backs unit tests and development mode.
type InMemoryStore struct {
	mu         sync.RWMutex
	byID       map[domain.UserID]*User
	byTelegram map[domain.TelegramID]domain.UserID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:       make(map[domain.UserID]*User),
		byTelegram: make(map[domain.TelegramID]domain.UserID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byTelegram[u.TelegramID]; exists {
		return sentinel.ErrConflict
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.byTelegram[u.TelegramID] = u.ID
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryStore) GetByTelegramID(_ context.Context, tgID domain.TelegramID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byTelegram[tgID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byTelegram, u.TelegramID)
	delete(s.byID, id)
	return nil
}
