package domain

import dErrors "vetblood/pkg/domain-errors"

// Closed status enumerations. The original data model accepted arbitrary
// status strings in several paths; services now validate against these sets
// and reject anything else with a validation error.

// UserRole enumerates who a registered user acts as.
type UserRole string

const (
	RoleOwner  UserRole = "owner"
	RoleDonor  UserRole = "donor"
	RoleClinic UserRole = "clinic"
)

func ParseUserRole(s string) (UserRole, error) {
	switch UserRole(s) {
	case RoleOwner, RoleDonor, RoleClinic:
		return UserRole(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown user role %q", s)
}

// StockStatus is the lifecycle of a clinic's blood stock.
type StockStatus string

const (
	StockActive  StockStatus = "active"
	StockBooked  StockStatus = "booked"
	StockExpired StockStatus = "expired"
)

func ParseStockStatus(s string) (StockStatus, error) {
	switch StockStatus(s) {
	case StockActive, StockBooked, StockExpired:
		return StockStatus(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown stock status %q", s)
}

// SearchStatus is the lifecycle of a blood search request.
type SearchStatus string

const (
	SearchActive SearchStatus = "active"
	SearchClosed SearchStatus = "closed"
)

func ParseSearchStatus(s string) (SearchStatus, error) {
	switch SearchStatus(s) {
	case SearchActive, SearchClosed:
		return SearchStatus(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown search status %q", s)
}

// DonationStatus is the lifecycle of a planned donation.
type DonationStatus string

const (
	DonationPlanned   DonationStatus = "planned"
	DonationCompleted DonationStatus = "completed"
	DonationCancelled DonationStatus = "cancelled"
)

func ParseDonationStatus(s string) (DonationStatus, error) {
	switch DonationStatus(s) {
	case DonationPlanned, DonationCompleted, DonationCancelled:
		return DonationStatus(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown donation status %q", s)
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsZero reports whether no location was ever recorded. (0,0) is open ocean,
// not a place a pet lives.
func (l Location) IsZero() bool { return l.Latitude == 0 && l.Longitude == 0 }
