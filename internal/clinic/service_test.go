package clinic

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"vetblood/internal/audit"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	txcontext "vetblood/pkg/platform/tx"
)

type ClinicServiceSuite struct {
	suite.Suite
	svc   *Service
	owner domain.UserID
}

func (s *ClinicServiceSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.svc = NewService(NewInMemoryStore(), audit.NewPublisher(audit.NewInMemoryStore(), logger), txcontext.NopRunner{})
	s.owner = domain.NewUserID()
}

func TestClinicServiceSuite(t *testing.T) {
	suite.Run(t, new(ClinicServiceSuite))
}

func (s *ClinicServiceSuite) create() *Clinic {
	c, err := s.svc.Create(context.Background(), s.owner, CreateRequest{
		Name:     "ZooDoctor",
		Location: domain.Location{Latitude: 55.75, Longitude: 37.61},
	})
	s.Require().NoError(err)
	return c
}

func (s *ClinicServiceSuite) TestCreateRequiresNameAndLocation() {
	_, err := s.svc.Create(context.Background(), s.owner, CreateRequest{Name: "  "})
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))

	_, err = s.svc.Create(context.Background(), s.owner, CreateRequest{Name: "ZooDoctor"})
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}

func (s *ClinicServiceSuite) TestUpdateByNonOwnerForbidden() {
	c := s.create()
	stranger := domain.NewUserID()
	name := "Hijacked"
	_, err := s.svc.Update(context.Background(), stranger, c.ID, UpdateRequest{Name: &name})
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
}

func (s *ClinicServiceSuite) TestDeleteByNonOwnerForbiddenAndKeepsRow() {
	c := s.create()
	err := s.svc.Delete(context.Background(), domain.NewUserID(), c.ID)
	s.True(dErrors.Is(err, dErrors.CodeForbidden))

	clinics, err := s.svc.List(context.Background())
	s.Require().NoError(err)
	s.Len(clinics, 1)
}

func (s *ClinicServiceSuite) TestUpdateAndDeleteByOwner() {
	c := s.create()
	name := "ZooDoctor Plus"
	updated, err := s.svc.Update(context.Background(), s.owner, c.ID, UpdateRequest{Name: &name})
	s.Require().NoError(err)
	s.Equal(name, updated.Name)

	s.Require().NoError(s.svc.Delete(context.Background(), s.owner, c.ID))
	clinics, err := s.svc.List(context.Background())
	s.Require().NoError(err)
	s.Empty(clinics)
}

func (s *ClinicServiceSuite) TestUpdateMissingClinicNotFound() {
	name := "Nowhere"
	_, err := s.svc.Update(context.Background(), s.owner, domain.NewClinicID(), UpdateRequest{Name: &name})
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}
