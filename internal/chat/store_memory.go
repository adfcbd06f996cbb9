package chat

import (
	"context"
	"sort"
	"sync"

	"vetblood/pkg/domain"
	"vetblood/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	chats    map[domain.ChatID]*Chat
	messages map[domain.MessageID]*Message
	// order preserves append order; timestamps alone can collide.
	order []domain.MessageID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		chats:    make(map[domain.ChatID]*Chat),
		messages: make(map[domain.MessageID]*Message),
	}
}

func (s *InMemoryStore) CreateChat(_ context.Context, c *Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.chats[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetChat(_ context.Context, id domain.ChatID) (*Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) ListChats(_ context.Context, participant domain.UserID) ([]Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Chat
	for _, c := range s.chats {
		if c.Involves(participant) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) DeleteChat(_ context.Context, id domain.ChatID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.chats, id)
	for mid, m := range s.messages {
		if m.ChatID == id {
			delete(s.messages, mid)
		}
	}
	return nil
}

func (s *InMemoryStore) AppendMessage(_ context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[m.ChatID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *m
	s.messages[m.ID] = &cp
	s.order = append(s.order, m.ID)
	return nil
}

func (s *InMemoryStore) GetMessage(_ context.Context, id domain.MessageID) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *InMemoryStore) ListMessages(_ context.Context, chatID domain.ChatID) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Message
	for _, id := range s.order {
		if m, ok := s.messages[id]; ok && m.ChatID == chatID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *InMemoryStore) DeleteMessage(_ context.Context, id domain.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.messages, id)
	return nil
}
