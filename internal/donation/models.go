package donation

import (
	"time"

	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
)

// Donation links a donor pet to the clinic where the donation happens.
// OwnerID is the donor pet's owner at planning time; it gates updates and
// scopes listing.
type Donation struct {
	ID         domain.DonationID     `json:"id"`
	OwnerID    domain.UserID         `json:"owner_id"`
	DonorPetID domain.PetID          `json:"donor_pet_id"`
	ClinicID   domain.ClinicID       `json:"clinic_id"`
	Date       time.Time             `json:"date"`
	Status     domain.DonationStatus `json:"status"`
	CreatedAt  time.Time             `json:"created_at"`
}

type PlanRequest struct {
	DonorPetID string    `json:"donor_pet_id"`
	ClinicID   string    `json:"clinic_id"`
	Date       time.Time `json:"date"`
}

func (r PlanRequest) validate() (domain.PetID, domain.ClinicID, error) {
	petID, err := domain.ParsePetID(r.DonorPetID)
	if err != nil {
		return domain.PetID{}, domain.ClinicID{}, err
	}
	clinicID, err := domain.ParseClinicID(r.ClinicID)
	if err != nil {
		return domain.PetID{}, domain.ClinicID{}, err
	}
	if r.Date.IsZero() {
		return domain.PetID{}, domain.ClinicID{}, dErrors.New(dErrors.CodeInvalidInput, "date is required")
	}
	return petID, clinicID, nil
}

type StatusRequest struct {
	Status string `json:"status"`
}
