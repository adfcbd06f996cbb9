package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"vetblood/pkg/domain"
)

// InMemoryOutbox backs unit tests and single-process development runs.
type InMemoryOutbox struct {
	mu    sync.Mutex
	items map[uuid.UUID]*Notification
	order []uuid.UUID
}

func NewInMemoryOutbox() *InMemoryOutbox {
	return &InMemoryOutbox{items: make(map[uuid.UUID]*Notification)}
}

func (o *InMemoryOutbox) Enqueue(_ context.Context, to domain.TelegramID, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := &Notification{
		ID:         uuid.New(),
		TelegramID: to,
		Text:       text,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}
	o.items[n.ID] = n
	o.order = append(o.order, n.ID)
	return nil
}

func (o *InMemoryOutbox) ClaimPending(_ context.Context, limit int) ([]Notification, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []Notification
	for _, id := range o.order {
		if len(out) >= limit {
			break
		}
		if n := o.items[id]; n.Status == StatusPending {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (o *InMemoryOutbox) MarkPublished(_ context.Context, id uuid.UUID) error {
	return o.setStatus(id, StatusPublished)
}

func (o *InMemoryOutbox) MarkDelivered(_ context.Context, id uuid.UUID) error {
	return o.setStatus(id, StatusDelivered)
}

func (o *InMemoryOutbox) MarkAttempt(_ context.Context, id uuid.UUID, _ error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if n, ok := o.items[id]; ok {
		n.Attempts++
		if n.Attempts >= maxAttempts {
			n.Status = StatusFailed
		} else {
			n.Status = StatusPending
		}
	}
	return nil
}

func (o *InMemoryOutbox) setStatus(id uuid.UUID, status Status) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if n, ok := o.items[id]; ok {
		n.Status = status
	}
	return nil
}

// All returns every notification in enqueue order, for test assertions.
func (o *InMemoryOutbox) All() []Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Notification, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, *o.items[id])
	}
	return out
}
