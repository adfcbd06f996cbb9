package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vetblood/internal/audit"
	"vetblood/internal/notify"
	"vetblood/internal/platform/metrics"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
)

// Service implements registration and profile management.
type Service struct {
	store   Store
	audit   *audit.Publisher
	outbox  notify.Enqueuer
	txr     txcontext.Runner
	metrics *metrics.Metrics
}

func NewService(store Store, auditor *audit.Publisher, outbox notify.Enqueuer, txr txcontext.Runner, m *metrics.Metrics) *Service {
	return &Service{store: store, audit: auditor, outbox: outbox, txr: txr, metrics: m}
}

// Register creates a user row for the verified Telegram identity. The user
// row, the audit entry and the welcome notification commit in one
// transaction; a duplicate telegram ID yields a conflict.
func (s *Service) Register(ctx context.Context, tgID domain.TelegramID, req RegisterRequest) (*User, error) {
	role, err := req.validate()
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:         domain.NewUserID(),
		TelegramID: tgID,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Email:      req.Email,
		Role:       role,
		ConsentPD:  req.ConsentPD,
		CreatedAt:  time.Now(),
	}

	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, u); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "user with this telegram ID already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
		}
		if err := s.audit.Emit(ctx, u.ID, audit.ActionRegistration, map[string]any{"role": string(role)}); err != nil {
			return err
		}
		return s.outbox.Enqueue(ctx, tgID, fmt.Sprintf("Добро пожаловать, %s! Регистрация завершена.", u.FullName))
	})
	if err != nil {
		return nil, err
	}
	s.metrics.UsersRegistered.Inc()
	return u, nil
}

// Profile returns the caller's own user row.
func (s *Service) Profile(ctx context.Context, id domain.UserID) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	s.audit.EmitBestEffort(ctx, id, audit.ActionProfileView, nil)
	return u, nil
}

// UpdateProfile applies non-nil fields from req to the caller's profile.
func (s *Service) UpdateProfile(ctx context.Context, id domain.UserID, req UpdateRequest) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Role != nil {
		role, err := domain.ParseUserRole(*req.Role)
		if err != nil {
			return nil, err
		}
		u.Role = role
	}

	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, u); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
		}
		return s.audit.Emit(ctx, id, audit.ActionProfileUpdate, nil)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteProfile removes the caller's account.
func (s *Service) DeleteProfile(ctx context.Context, id domain.UserID) error {
	return s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, id); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "user not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
		}
		return s.audit.Emit(ctx, id, audit.ActionProfileDelete, nil)
	})
}

// TelegramIDOf returns the Telegram chat ID behind a user, for notification
// enqueueing.
func (s *Service) TelegramIDOf(ctx context.Context, id domain.UserID) (domain.TelegramID, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return u.TelegramID, nil
}

// ResolveTelegramID maps a verified Telegram identity to a user row for the
// auth middleware.
func (s *Service) ResolveTelegramID(ctx context.Context, tgID domain.TelegramID) (domain.UserID, domain.UserRole, error) {
	u, err := s.store.GetByTelegramID(ctx, tgID)
	if err != nil {
		return domain.UserID{}, "", err
	}
	return u.ID, u.Role, nil
}
