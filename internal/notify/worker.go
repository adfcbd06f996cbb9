package notify

import (
	"context"
	"log/slog"
	"time"

	"vetblood/internal/platform/metrics"
)

// Worker delivers pending notifications directly, without a broker.
// Used when no Kafka cluster is configured.
type Worker struct {
	outbox   Outbox
	sender   Sender
	interval time.Duration
	batch    int
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewWorker(outbox Outbox, sender Sender, interval time.Duration, m *metrics.Metrics, logger *slog.Logger) *Worker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Worker{outbox: outbox, sender: sender, interval: interval, batch: 50, metrics: m, logger: logger}
}

// Run polls the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.deliverBatch(ctx)
		}
	}
}

func (w *Worker) deliverBatch(ctx context.Context) {
	pending, err := w.outbox.ClaimPending(ctx, w.batch)
	if err != nil {
		w.logger.Error("claim pending failed", "error", err)
		return
	}
	for _, n := range pending {
		if err := w.sender.Send(ctx, n.TelegramID, n.Text); err != nil {
			w.metrics.NotificationsFailed.Inc()
			if markErr := w.outbox.MarkAttempt(ctx, n.ID, err); markErr != nil {
				w.logger.Error("mark attempt failed", "notification_id", n.ID, "error", markErr)
			}
			continue
		}
		w.metrics.NotificationsSent.Inc()
		if err := w.outbox.MarkDelivered(ctx, n.ID); err != nil {
			w.logger.Error("mark delivered failed", "notification_id", n.ID, "error", err)
		}
	}
}
