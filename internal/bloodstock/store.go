package bloodstock

import (
	"context"

	"vetblood/pkg/domain"
)

// Store persists blood stocks. Implementations return sentinel errors; the
// service translates them into coded domain errors.
type Store interface {
	Create(ctx context.Context, st *Stock) error
	GetByID(ctx context.Context, id domain.StockID) (*Stock, error)
	List(ctx context.Context) ([]Stock, error)
	// HasActive reports whether the clinic holds at least one active unit of
	// the given blood type. Used by the matching workflow.
	HasActive(ctx context.Context, clinicID domain.ClinicID, bloodType string) (bool, error)
	Update(ctx context.Context, st *Stock) error
	Delete(ctx context.Context, id domain.StockID) error
}
