package user

import (
	"strings"
	"time"

	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
)

// User is a registered account. One Telegram identity maps to at most one
// user row.
type User struct {
	ID         domain.UserID     `json:"id"`
	TelegramID domain.TelegramID `json:"telegram_id"`
	FullName   string            `json:"full_name"`
	Phone      string            `json:"phone,omitempty"`
	Email      string            `json:"email,omitempty"`
	Role       domain.UserRole   `json:"role"`
	ConsentPD  bool              `json:"consent_pd"`
	CreatedAt  time.Time         `json:"created_at"`
}

// RegisterRequest is the registration payload. The Telegram ID comes from
// the verified init data, never from the body.
type RegisterRequest struct {
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ConsentPD bool   `json:"consent_pd"`
}

func (r RegisterRequest) validate() (domain.UserRole, error) {
	if strings.TrimSpace(r.FullName) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "full_name is required")
	}
	if !r.ConsentPD {
		return "", dErrors.New(dErrors.CodeInvalidInput, "personal data consent is required")
	}
	role, err := domain.ParseUserRole(r.Role)
	if err != nil {
		return "", err
	}
	return role, nil
}

// UpdateRequest carries profile edits. Nil fields are left unchanged.
type UpdateRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
}
