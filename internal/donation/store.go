package donation

import (
	"context"

	"vetblood/pkg/domain"
)

// Store persists donations. Implementations return sentinel errors; the
// service translates them into coded domain errors.
type Store interface {
	Create(ctx context.Context, d *Donation) error
	GetByID(ctx context.Context, id domain.DonationID) (*Donation, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]Donation, error)
	Update(ctx context.Context, d *Donation) error
	Delete(ctx context.Context, id domain.DonationID) error
}
