//go:build integration

package geo

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetblood/internal/platform/metrics"
	platformredis "vetblood/internal/platform/redis"
	"vetblood/pkg/domain"
	"vetblood/pkg/testutil/containers"
)

type countingDistance struct {
	calls int
	km    float64
}

func (c *countingDistance) Distance(ctx context.Context, from, to domain.Location) (float64, error) {
	c.calls++
	return c.km, nil
}

func TestCachedServiceAgainstRedis(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	t.Cleanup(func() { _ = rc.Client.Close() })
	ctx := context.Background()

	next := &countingDistance{km: 12.345}
	svc := NewCachedService(next,
		&platformredis.Client{Client: rc.Client},
		time.Minute,
		metrics.New(prometheus.NewRegistry()),
		slog.New(slog.DiscardHandler),
	)

	from := domain.Location{Latitude: 55.75, Longitude: 37.61}
	to := domain.Location{Latitude: 55.80, Longitude: 37.50}

	km, err := svc.Distance(ctx, from, to)
	require.NoError(t, err)
	assert.InDelta(t, 12.345, km, 0.001)
	assert.Equal(t, 1, next.calls)

	// Second lookup is served from Redis.
	km, err = svc.Distance(ctx, from, to)
	require.NoError(t, err)
	assert.InDelta(t, 12.345, km, 0.001)
	assert.Equal(t, 1, next.calls)

	// A different pair misses.
	_, err = svc.Distance(ctx, from, domain.Location{Latitude: 54.0, Longitude: 36.0})
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}
