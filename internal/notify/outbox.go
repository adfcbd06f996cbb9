package notify

import (
	"context"

	"github.com/google/uuid"

	"vetblood/pkg/domain"
)

// Enqueuer is the only notification surface domain services see.
// The postgres implementation joins the caller's transaction, so enqueued
// notifications commit or roll back with the row that caused them.
type Enqueuer interface {
	Enqueue(ctx context.Context, to domain.TelegramID, text string) error
}

// Outbox is the full store surface used by the relay and delivery workers.
type Outbox interface {
	Enqueuer
	// ClaimPending returns up to limit pending notifications, locking them
	// against concurrent relay instances.
	ClaimPending(ctx context.Context, limit int) ([]Notification, error)
	// MarkPublished records that a notification was handed to the broker.
	MarkPublished(ctx context.Context, id uuid.UUID) error
	// MarkDelivered records successful delivery.
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	// MarkAttempt increments the attempt counter, recording the delivery
	// error. The row returns to pending so it is picked up again; after
	// maxAttempts it flips to failed and stays there.
	MarkAttempt(ctx context.Context, id uuid.UUID, deliveryErr error) error
}
