package pet

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"vetblood/internal/audit"
	"vetblood/internal/media"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	txcontext "vetblood/pkg/platform/tx"
)

type PetServiceSuite struct {
	suite.Suite
	svc    *Service
	photos *media.InMemoryStorage
	owner  domain.UserID
}

func (s *PetServiceSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.photos = media.NewInMemoryStorage()
	s.svc = NewService(NewInMemoryStore(), s.photos,
		audit.NewPublisher(audit.NewInMemoryStore(), logger), txcontext.NopRunner{})
	s.owner = domain.NewUserID()
}

func TestPetServiceSuite(t *testing.T) {
	suite.Run(t, new(PetServiceSuite))
}

func (s *PetServiceSuite) TestCreateRequiresNameAndSpecies() {
	_, err := s.svc.Create(context.Background(), s.owner, CreateRequest{Species: "dog"})
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))

	_, err = s.svc.Create(context.Background(), s.owner, CreateRequest{Name: "Bobik"})
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}

func (s *PetServiceSuite) TestCreateUploadsPhoto() {
	encoded := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	p, err := s.svc.Create(context.Background(), s.owner, CreateRequest{
		Name:        "Bobik",
		Species:     "dog",
		PhotoBase64: encoded,
	})
	s.Require().NoError(err)
	s.True(strings.HasPrefix(p.PhotoURL, "https://storage.test/pets/"))
}

func (s *PetServiceSuite) TestCreateRejectsBadPhoto() {
	_, err := s.svc.Create(context.Background(), s.owner, CreateRequest{
		Name:        "Bobik",
		Species:     "dog",
		PhotoBase64: "not base64!!",
	})
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}

func (s *PetServiceSuite) TestUpdateByNonOwnerForbidden() {
	p, err := s.svc.Create(context.Background(), s.owner, CreateRequest{Name: "Bobik", Species: "dog"})
	s.Require().NoError(err)

	name := "Rex"
	_, err = s.svc.Update(context.Background(), domain.NewUserID(), p.ID, UpdateRequest{Name: &name})
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
}

func (s *PetServiceSuite) TestListReturnsOnlyOwnPets() {
	ctx := context.Background()
	_, err := s.svc.Create(ctx, s.owner, CreateRequest{Name: "Bobik", Species: "dog"})
	s.Require().NoError(err)
	_, err = s.svc.Create(ctx, domain.NewUserID(), CreateRequest{Name: "Murka", Species: "cat"})
	s.Require().NoError(err)

	pets, err := s.svc.ListByOwner(ctx, s.owner)
	s.Require().NoError(err)
	s.Require().Len(pets, 1)
	s.Equal("Bobik", pets[0].Name)
}

func (s *PetServiceSuite) TestDeleteMissingPetNotFound() {
	err := s.svc.Delete(context.Background(), s.owner, domain.NewPetID())
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}
