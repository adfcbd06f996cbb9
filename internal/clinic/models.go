package clinic

import (
	"strings"
	"time"

	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
)

// Clinic is a veterinary clinic administered by a registered user.
type Clinic struct {
	ID        domain.ClinicID `json:"id"`
	OwnerID   domain.UserID   `json:"owner_id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone,omitempty"`
	Address   string          `json:"address,omitempty"`
	WorkHours string          `json:"work_hours,omitempty"`
	Location  domain.Location `json:"location"`
	CreatedAt time.Time       `json:"created_at"`
}

type CreateRequest struct {
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	WorkHours string          `json:"work_hours"`
	Location  domain.Location `json:"location"`
}

func (r CreateRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if r.Location.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "location is required")
	}
	return nil
}

type UpdateRequest struct {
	Name      *string          `json:"name,omitempty"`
	Phone     *string          `json:"phone,omitempty"`
	Address   *string          `json:"address,omitempty"`
	WorkHours *string          `json:"work_hours,omitempty"`
	Location  *domain.Location `json:"location,omitempty"`
}
