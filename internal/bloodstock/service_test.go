package bloodstock

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vetblood/internal/audit"
	"vetblood/internal/clinic"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	txcontext "vetblood/pkg/platform/tx"
)

type StockServiceSuite struct {
	suite.Suite
	svc      *Service
	clinics  *clinic.InMemoryStore
	admin    domain.UserID
	clinicID domain.ClinicID
}

func (s *StockServiceSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.clinics = clinic.NewInMemoryStore()
	s.admin = domain.NewUserID()
	s.clinicID = domain.NewClinicID()
	s.Require().NoError(s.clinics.Create(context.Background(), &clinic.Clinic{
		ID:      s.clinicID,
		OwnerID: s.admin,
		Name:    "ZooDoctor",
	}))
	s.svc = NewService(NewInMemoryStore(), s.clinics,
		audit.NewPublisher(audit.NewInMemoryStore(), logger), txcontext.NopRunner{})
}

func TestStockServiceSuite(t *testing.T) {
	suite.Run(t, new(StockServiceSuite))
}

func (s *StockServiceSuite) create() *Stock {
	st, err := s.svc.Create(context.Background(), s.admin, CreateRequest{
		ClinicID:  s.clinicID.String(),
		BloodType: "A",
		VolumeML:  450,
	})
	s.Require().NoError(err)
	return st
}

func (s *StockServiceSuite) TestCreateStartsActive() {
	st := s.create()
	s.Equal(domain.StockActive, st.Status)
}

func (s *StockServiceSuite) TestCreateByNonAdminForbidden() {
	_, err := s.svc.Create(context.Background(), domain.NewUserID(), CreateRequest{
		ClinicID:  s.clinicID.String(),
		BloodType: "A",
		VolumeML:  450,
	})
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
}

func (s *StockServiceSuite) TestBookFlipsActiveToBooked() {
	st := s.create()
	booked, err := s.svc.Book(context.Background(), domain.NewUserID(), st.ID)
	s.Require().NoError(err)
	s.Equal(domain.StockBooked, booked.Status)

	// A second booking of the same unit conflicts.
	_, err = s.svc.Book(context.Background(), domain.NewUserID(), st.ID)
	s.True(dErrors.Is(err, dErrors.CodeConflict))
}

func (s *StockServiceSuite) TestBookExpiredStockConflicts() {
	past := time.Now().Add(-24 * time.Hour)
	st, err := s.svc.Create(context.Background(), s.admin, CreateRequest{
		ClinicID:       s.clinicID.String(),
		BloodType:      "A",
		VolumeML:       450,
		ExpirationDate: &past,
	})
	s.Require().NoError(err)

	_, err = s.svc.Book(context.Background(), domain.NewUserID(), st.ID)
	s.True(dErrors.Is(err, dErrors.CodeConflict))
}

func (s *StockServiceSuite) TestUpdateRejectsUnknownStatus() {
	st := s.create()
	bad := "vanished"
	_, err := s.svc.Update(context.Background(), s.admin, st.ID, UpdateRequest{Status: &bad})
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}

func (s *StockServiceSuite) TestHasActiveRespectsStatusAndType() {
	st := s.create()
	ctx := context.Background()

	ok, err := s.svc.HasActive(ctx, s.clinicID, "A")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.svc.HasActive(ctx, s.clinicID, "B")
	s.Require().NoError(err)
	s.False(ok)

	_, err = s.svc.Book(ctx, domain.NewUserID(), st.ID)
	s.Require().NoError(err)

	ok, err = s.svc.HasActive(ctx, s.clinicID, "A")
	s.Require().NoError(err)
	s.False(ok, "booked stock is not active")
}
