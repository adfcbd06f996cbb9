package bloodstock

import (
	"strings"
	"time"

	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
)

// Stock is a unit of banked blood held by a clinic.
type Stock struct {
	ID             domain.StockID     `json:"id"`
	ClinicID       domain.ClinicID    `json:"clinic_id"`
	BloodType      string             `json:"blood_type"`
	VolumeML       int                `json:"volume_ml"`
	PriceRub       float64            `json:"price_rub,omitempty"`
	ExpirationDate *time.Time         `json:"expiration_date,omitempty"`
	Status         domain.StockStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}

type CreateRequest struct {
	ClinicID       string     `json:"clinic_id"`
	BloodType      string     `json:"blood_type"`
	VolumeML       int        `json:"volume_ml"`
	PriceRub       float64    `json:"price_rub"`
	ExpirationDate *time.Time `json:"expiration_date"`
}

func (r CreateRequest) validate() (domain.ClinicID, error) {
	clinicID, err := domain.ParseClinicID(r.ClinicID)
	if err != nil {
		return domain.ClinicID{}, err
	}
	if strings.TrimSpace(r.BloodType) == "" {
		return domain.ClinicID{}, dErrors.New(dErrors.CodeInvalidInput, "blood_type is required")
	}
	if r.VolumeML <= 0 {
		return domain.ClinicID{}, dErrors.New(dErrors.CodeInvalidInput, "volume_ml must be positive")
	}
	return clinicID, nil
}

type UpdateRequest struct {
	BloodType      *string    `json:"blood_type,omitempty"`
	VolumeML       *int       `json:"volume_ml,omitempty"`
	PriceRub       *float64   `json:"price_rub,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	Status         *string    `json:"status,omitempty"`
}

// BookRequest books a stock unit for a search or donation.
type BookRequest struct {
	StockID string `json:"stock_id"`
}
