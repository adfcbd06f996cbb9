package user

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"vetblood/internal/audit"
	"vetblood/internal/notify"
	"vetblood/internal/platform/metrics"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	txcontext "vetblood/pkg/platform/tx"
)

type UserServiceSuite struct {
	suite.Suite
	svc    *Service
	store  *InMemoryStore
	auditS *audit.InMemoryStore
	outbox *notify.InMemoryOutbox
}

func (s *UserServiceSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.store = NewInMemoryStore()
	s.auditS = audit.NewInMemoryStore()
	s.outbox = notify.NewInMemoryOutbox()
	s.svc = NewService(
		s.store,
		audit.NewPublisher(s.auditS, logger),
		s.outbox,
		txcontext.NopRunner{},
		metrics.New(prometheus.NewRegistry()),
	)
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		FullName:  "Ivan Petrov",
		Phone:     "+79991234567",
		Role:      "owner",
		ConsentPD: true,
	}
}

func (s *UserServiceSuite) TestRegisterCreatesUserAuditAndNotification() {
	ctx := context.Background()
	u, err := s.svc.Register(ctx, 1001, validRegistration())
	s.Require().NoError(err)
	s.Equal(domain.TelegramID(1001), u.TelegramID)
	s.Equal(domain.RoleOwner, u.Role)
	s.False(u.ID.IsNil())

	entries := s.auditS.All()
	s.Require().Len(entries, 1)
	s.Equal(audit.ActionRegistration, entries[0].Action)

	s.Require().Len(s.outbox.All(), 1)
	s.Equal(domain.TelegramID(1001), s.outbox.All()[0].TelegramID)
}

func (s *UserServiceSuite) TestRegisterDuplicateTelegramIDConflicts() {
	ctx := context.Background()
	_, err := s.svc.Register(ctx, 1001, validRegistration())
	s.Require().NoError(err)

	_, err = s.svc.Register(ctx, 1001, validRegistration())
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeConflict))
}

func (s *UserServiceSuite) TestRegisterRequiresConsent() {
	req := validRegistration()
	req.ConsentPD = false
	_, err := s.svc.Register(context.Background(), 1001, req)
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}

func (s *UserServiceSuite) TestRegisterRejectsUnknownRole() {
	req := validRegistration()
	req.Role = "superadmin"
	_, err := s.svc.Register(context.Background(), 1001, req)
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}

func (s *UserServiceSuite) TestUpdateProfilePartial() {
	ctx := context.Background()
	u, err := s.svc.Register(ctx, 1001, validRegistration())
	s.Require().NoError(err)

	newName := "Pyotr Ivanov"
	updated, err := s.svc.UpdateProfile(ctx, u.ID, UpdateRequest{FullName: &newName})
	s.Require().NoError(err)
	s.Equal(newName, updated.FullName)
	s.Equal(u.Phone, updated.Phone, "unspecified fields stay intact")
}

func (s *UserServiceSuite) TestProfileNotFound() {
	_, err := s.svc.Profile(context.Background(), domain.NewUserID())
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *UserServiceSuite) TestDeleteProfileFreesTelegramID() {
	ctx := context.Background()
	u, err := s.svc.Register(ctx, 1001, validRegistration())
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteProfile(ctx, u.ID))

	_, err = s.svc.Register(ctx, 1001, validRegistration())
	s.NoError(err, "deleted telegram ID can register again")
}

func TestResolveTelegramID(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	logger := slog.New(slog.DiscardHandler)
	svc := NewService(store, audit.NewPublisher(audit.NewInMemoryStore(), logger),
		notify.NewInMemoryOutbox(), txcontext.NopRunner{}, metrics.New(prometheus.NewRegistry()))

	u, err := svc.Register(ctx, 555, validRegistration())
	require.NoError(t, err)

	id, role, err := svc.ResolveTelegramID(ctx, 555)
	require.NoError(t, err)
	require.Equal(t, u.ID, id)
	require.Equal(t, domain.RoleOwner, role)

	_, _, err = svc.ResolveTelegramID(ctx, 9999)
	require.Error(t, err)
}
