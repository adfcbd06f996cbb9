package clinic

import (
	"context"

	"vetblood/pkg/domain"
)

// Store persists clinics. Implementations return sentinel errors; the
// service translates them into coded domain errors.
type Store interface {
	Create(ctx context.Context, c *Clinic) error
	GetByID(ctx context.Context, id domain.ClinicID) (*Clinic, error)
	List(ctx context.Context) ([]Clinic, error)
	Update(ctx context.Context, c *Clinic) error
	Delete(ctx context.Context, id domain.ClinicID) error
}
