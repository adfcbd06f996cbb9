package bloodsearch

import (
	"time"

	"vetblood/pkg/domain"
)

// Search is a blood request raised for a recipient pet. QualifyingClinics
// records which clinics matched when the search ran, so a fulfilled search
// can be traced back to its candidates.
type Search struct {
	ID                domain.SearchID     `json:"id"`
	PetID             domain.PetID        `json:"pet_id"`
	RequesterID       domain.UserID       `json:"requester_id"`
	BloodType         string              `json:"blood_type"`
	Status            domain.SearchStatus `json:"status"`
	QualifyingClinics []domain.ClinicID   `json:"qualifying_clinics"`
	CreatedAt         time.Time           `json:"created_at"`
}

type CreateRequest struct {
	PetID string `json:"pet_id"`
}

type UpdateRequest struct {
	Status *string `json:"status,omitempty"`
}
