package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"vetblood/internal/platform/metrics"
	"vetblood/pkg/domain"
)

// envelope is the wire format for notifications on the Kafka topic.
type envelope struct {
	ID         string            `json:"id"`
	TelegramID domain.TelegramID `json:"telegram_id"`
	Text       string            `json:"text"`
}

// Relay drains pending outbox rows into a Kafka topic. Delivery to
// Telegram happens on the consuming side; the relay only guarantees
// that each pending row is published at least once.
type Relay struct {
	outbox   Outbox
	client   *kgo.Client
	topic    string
	interval time.Duration
	batch    int
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewRelay(outbox Outbox, client *kgo.Client, topic string, interval time.Duration, m *metrics.Metrics, logger *slog.Logger) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	return &Relay{
		outbox:   outbox,
		client:   client,
		topic:    topic,
		interval: interval,
		batch:    100,
		metrics:  m,
		logger:   logger,
	}
}

// EnsureTopic creates the notification topic if it does not exist yet.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Run polls the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drain(ctx); err != nil {
				r.logger.Error("outbox drain failed", "error", err)
			}
		}
	}
}

func (r *Relay) drain(ctx context.Context) error {
	pending, err := r.outbox.ClaimPending(ctx, r.batch)
	if err != nil {
		return fmt.Errorf("claim pending: %w", err)
	}
	for _, n := range pending {
		payload, err := json.Marshal(envelope{ID: n.ID.String(), TelegramID: n.TelegramID, Text: n.Text})
		if err != nil {
			return fmt.Errorf("marshal notification %s: %w", n.ID, err)
		}
		rec := &kgo.Record{Topic: r.topic, Key: []byte(n.ID.String()), Value: payload}
		if err := r.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
			if markErr := r.outbox.MarkAttempt(ctx, n.ID, err); markErr != nil {
				r.logger.Error("mark attempt failed", "notification_id", n.ID, "error", markErr)
			}
			r.metrics.NotificationsFailed.Inc()
			continue
		}
		if err := r.outbox.MarkPublished(ctx, n.ID); err != nil {
			r.logger.Error("mark published failed", "notification_id", n.ID, "error", err)
			continue
		}
		r.metrics.NotificationsSent.Inc()
	}
	return nil
}
