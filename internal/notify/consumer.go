package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"vetblood/internal/platform/metrics"
)

// Consumer reads published notifications from Kafka and delivers them
// through a Sender, recording terminal status back in the outbox.
type Consumer struct {
	client  *kgo.Client
	outbox  Outbox
	sender  Sender
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewConsumer(client *kgo.Client, outbox Outbox, sender Sender, m *metrics.Metrics, logger *slog.Logger) *Consumer {
	return &Consumer{client: client, outbox: outbox, sender: sender, metrics: m, logger: logger}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fe := range errs {
				c.logger.Error("fetch error", "topic", fe.Topic, "partition", fe.Partition, "error", fe.Err)
			}
		}
		fetches.EachRecord(func(rec *kgo.Record) {
			if err := c.handle(ctx, rec); err != nil {
				c.logger.Error("deliver notification failed", "error", err)
			}
		})
	}
}

func (c *Consumer) handle(ctx context.Context, rec *kgo.Record) error {
	var env envelope
	if err := json.Unmarshal(rec.Value, &env); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	id, err := uuid.Parse(env.ID)
	if err != nil {
		return fmt.Errorf("parse notification id %q: %w", env.ID, err)
	}
	if err := c.sender.Send(ctx, env.TelegramID, env.Text); err != nil {
		c.metrics.NotificationsFailed.Inc()
		if markErr := c.outbox.MarkAttempt(ctx, id, err); markErr != nil {
			c.logger.Error("mark attempt failed", "notification_id", id, "error", markErr)
		}
		return fmt.Errorf("send to %d: %w", env.TelegramID, err)
	}
	c.metrics.NotificationsSent.Inc()
	return c.outbox.MarkDelivered(ctx, id)
}
