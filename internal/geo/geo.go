// Package geo computes road distances between coordinates via an external
// routing API, with a circuit breaker around the API and a Redis cache in
// front of it.
package geo

import (
	"context"

	"vetblood/pkg/domain"
)

// DistanceService returns the driving distance in kilometers between two
// points. Implementations must honor the context deadline.
type DistanceService interface {
	Distance(ctx context.Context, from, to domain.Location) (float64, error)
}
