package pet

import (
	"context"

	"vetblood/pkg/domain"
)

// Store persists pets. Implementations return sentinel errors; the service
// translates them into coded domain errors.
type Store interface {
	Create(ctx context.Context, p *Pet) error
	GetByID(ctx context.Context, id domain.PetID) (*Pet, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]Pet, error)
	Update(ctx context.Context, p *Pet) error
	Delete(ctx context.Context, id domain.PetID) error
}
