// Package notify delivers user-facing messages over Telegram with
// at-least-once semantics. Domain services never call Telegram inline:
// they enqueue a notification row in the outbox inside their own
// transaction, and delivery happens asynchronously — either through the
// Kafka relay/consumer pair or the in-process worker.
package notify

import (
	"time"

	"github.com/google/uuid"

	"vetblood/pkg/domain"
)

// Status of an outbox row.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published" // handed to Kafka, consumer owns delivery
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed" // retries exhausted
)

// Notification is one message owed to a Telegram identity.
type Notification struct {
	ID         uuid.UUID
	TelegramID domain.TelegramID
	Text       string
	Status     Status
	Attempts   int
	CreatedAt  time.Time
}

// maxAttempts before a notification is marked failed and dropped.
const maxAttempts = 5
