package geo

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"vetblood/internal/platform/metrics"
	platformredis "vetblood/internal/platform/redis"
	"vetblood/pkg/domain"
)

// CachedService decorates a DistanceService with a Redis cache. Coordinates
// are rounded to ~100 m before keying so nearby lookups share entries.
// Cache failures degrade to the underlying service, never to an error.
type CachedService struct {
	next    DistanceService
	cache   *platformredis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewCachedService(next DistanceService, cache *platformredis.Client, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *CachedService {
	return &CachedService{next: next, cache: cache, ttl: ttl, metrics: m, logger: logger}
}

func (s *CachedService) Distance(ctx context.Context, from, to domain.Location) (float64, error) {
	if s.cache == nil {
		return s.next.Distance(ctx, from, to)
	}

	key := cacheKey(from, to)
	if cached, err := s.cache.Get(ctx, key).Result(); err == nil {
		if km, parseErr := strconv.ParseFloat(cached, 64); parseErr == nil {
			if s.metrics != nil {
				s.metrics.GeoCacheHits.Inc()
			}
			return km, nil
		}
	} else if err != redis.Nil {
		s.logger.WarnContext(ctx, "geo cache read failed", "error", err)
	}

	if s.metrics != nil {
		s.metrics.GeoCacheMisses.Inc()
	}

	km, err := s.next.Distance(ctx, from, to)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, key, strconv.FormatFloat(km, 'f', 3, 64), s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "geo cache write failed", "error", err)
	}
	return km, nil
}

func cacheKey(from, to domain.Location) string {
	// 3 decimal places ≈ 100 m grid
	return fmt.Sprintf("geo:dist:%.3f,%.3f:%.3f,%.3f",
		from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}
