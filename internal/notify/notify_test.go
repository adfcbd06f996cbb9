package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetblood/internal/platform/metrics"
	"vetblood/pkg/domain"
)

type recordingSender struct {
	sent []string
	err  error
}

func (s *recordingSender) Send(_ context.Context, _ domain.TelegramID, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	return nil
}

func TestOutboxLifecycle(t *testing.T) {
	ctx := context.Background()
	box := NewInMemoryOutbox()

	require.NoError(t, box.Enqueue(ctx, 111, "first"))
	require.NoError(t, box.Enqueue(ctx, 222, "second"))

	pending, err := box.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, box.MarkDelivered(ctx, pending[0].ID))

	pending, err = box.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "second", pending[0].Text)
}

// A published notification the consumer cannot deliver must come back to
// pending, or the relay would never re-publish it and a transient Telegram
// failure would drop it after one attempt.
func TestFailedDeliveryReturnsPublishedToPending(t *testing.T) {
	ctx := context.Background()
	box := NewInMemoryOutbox()
	require.NoError(t, box.Enqueue(ctx, 111, "flaky"))

	pending, err := box.ClaimPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	id := pending[0].ID

	require.NoError(t, box.MarkPublished(ctx, id))
	require.NoError(t, box.MarkAttempt(ctx, id, errors.New("telegram unavailable")))

	pending, err = box.ClaimPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1, "row must be claimable again after a failed attempt")
	assert.Equal(t, id, pending[0].ID)
	assert.Equal(t, 1, pending[0].Attempts)
}

func TestOutboxFailsAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	box := NewInMemoryOutbox()
	require.NoError(t, box.Enqueue(ctx, 111, "retry me"))

	pending, err := box.ClaimPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	id := pending[0].ID

	cause := errors.New("telegram unavailable")
	for i := 0; i < maxAttempts; i++ {
		require.NoError(t, box.MarkAttempt(ctx, id, cause))
	}

	pending, err = box.ClaimPending(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, pending, "failed notification must not be claimed again")
	assert.Equal(t, StatusFailed, box.All()[0].Status)
}

func TestWorkerDeliversPending(t *testing.T) {
	ctx := context.Background()
	box := NewInMemoryOutbox()
	require.NoError(t, box.Enqueue(ctx, 111, "hello"))
	require.NoError(t, box.Enqueue(ctx, 222, "world"))

	sender := &recordingSender{}
	w := NewWorker(box, sender, time.Millisecond, metrics.New(prometheus.NewRegistry()), slog.New(slog.DiscardHandler))
	w.deliverBatch(ctx)

	assert.Equal(t, []string{"hello", "world"}, sender.sent)
	for _, n := range box.All() {
		assert.Equal(t, StatusDelivered, n.Status)
	}
}

func TestWorkerRecordsFailedAttempt(t *testing.T) {
	ctx := context.Background()
	box := NewInMemoryOutbox()
	require.NoError(t, box.Enqueue(ctx, 111, "hello"))

	sender := &recordingSender{err: errors.New("chat not found")}
	w := NewWorker(box, sender, time.Millisecond, metrics.New(prometheus.NewRegistry()), slog.New(slog.DiscardHandler))
	w.deliverBatch(ctx)

	n := box.All()[0]
	assert.Equal(t, StatusPending, n.Status)
	assert.Equal(t, 1, n.Attempts)
}
