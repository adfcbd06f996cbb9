package pet

import (
	"strings"
	"time"

	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
)

// Pet is an animal owned by exactly one user. Location and blood type are
// optional at creation but required before the pet can request blood.
type Pet struct {
	ID        domain.PetID    `json:"id"`
	OwnerID   domain.UserID   `json:"owner_id"`
	Name      string          `json:"name"`
	Species   string          `json:"species"`
	Breed     string          `json:"breed,omitempty"`
	WeightKg  float64         `json:"weight_kg,omitempty"`
	PhotoURL  string          `json:"photo_url,omitempty"`
	Location  domain.Location `json:"location"`
	BloodType string          `json:"blood_type,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type CreateRequest struct {
	Name      string          `json:"name"`
	Species   string          `json:"species"`
	Breed     string          `json:"breed"`
	WeightKg  float64         `json:"weight_kg"`
	Location  domain.Location `json:"location"`
	BloodType string          `json:"blood_type"`
	// PhotoBase64 optionally carries the photo payload, raw base64 or a
	// data URL.
	PhotoBase64 string `json:"photo_base64"`
}

func (r CreateRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if strings.TrimSpace(r.Species) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "species is required")
	}
	return nil
}

type UpdateRequest struct {
	Name        *string          `json:"name,omitempty"`
	Breed       *string          `json:"breed,omitempty"`
	WeightKg    *float64         `json:"weight_kg,omitempty"`
	Location    *domain.Location `json:"location,omitempty"`
	BloodType   *string          `json:"blood_type,omitempty"`
	PhotoBase64 *string          `json:"photo_base64,omitempty"`
}
