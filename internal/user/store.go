package user

import (
	"context"

	"vetblood/pkg/domain"
)

// Store persists users. Implementations return sentinel errors
// (sentinel.ErrNotFound, sentinel.ErrConflict); the service translates them
// into coded domain errors.
type Store interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id domain.UserID) (*User, error)
	GetByTelegramID(ctx context.Context, tgID domain.TelegramID) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id domain.UserID) error
}
