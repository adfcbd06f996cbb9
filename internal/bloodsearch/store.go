package bloodsearch

import (
	"context"

	"vetblood/pkg/domain"
)

// Store persists blood searches. Implementations return sentinel errors; the
// service translates them into coded domain errors.
type Store interface {
	Create(ctx context.Context, sr *Search) error
	GetByID(ctx context.Context, id domain.SearchID) (*Search, error)
	ListByRequester(ctx context.Context, requesterID domain.UserID) ([]Search, error)
	Update(ctx context.Context, sr *Search) error
	Delete(ctx context.Context, id domain.SearchID) error
}
