package donation

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vetblood/internal/audit"
	"vetblood/internal/clinic"
	"vetblood/internal/notify"
	"vetblood/internal/pet"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	txcontext "vetblood/pkg/platform/tx"
)

type stubUsers struct {
	chats map[domain.UserID]domain.TelegramID
}

func (u *stubUsers) TelegramIDOf(_ context.Context, id domain.UserID) (domain.TelegramID, error) {
	tg, ok := u.chats[id]
	if !ok {
		return 0, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return tg, nil
}

type petDir struct{ store *pet.InMemoryStore }

func (d petDir) Get(ctx context.Context, id domain.PetID) (*pet.Pet, error) {
	p, err := d.store.GetByID(ctx, id)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "pet not found")
	}
	return p, nil
}

type DonationSuite struct {
	suite.Suite
	svc    *Service
	outbox *notify.InMemoryOutbox

	owner    domain.UserID
	admin    domain.UserID
	petID    domain.PetID
	clinicID domain.ClinicID
}

func (s *DonationSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	pets := pet.NewInMemoryStore()
	clinics := clinic.NewInMemoryStore()
	users := &stubUsers{chats: make(map[domain.UserID]domain.TelegramID)}
	s.outbox = notify.NewInMemoryOutbox()

	s.owner = domain.NewUserID()
	s.admin = domain.NewUserID()
	users.chats[s.owner] = 100
	users.chats[s.admin] = 200

	s.petID = domain.NewPetID()
	s.Require().NoError(pets.Create(context.Background(), &pet.Pet{
		ID: s.petID, OwnerID: s.owner, Name: "Bobik", Species: "dog",
	}))
	s.clinicID = domain.NewClinicID()
	s.Require().NoError(clinics.Create(context.Background(), &clinic.Clinic{
		ID: s.clinicID, OwnerID: s.admin, Name: "ZooDoctor",
	}))

	s.svc = NewService(NewInMemoryStore(), petDir{pets}, clinics, users,
		audit.NewPublisher(audit.NewInMemoryStore(), logger), s.outbox, txcontext.NopRunner{})
}

func TestDonationSuite(t *testing.T) {
	suite.Run(t, new(DonationSuite))
}

func (s *DonationSuite) plan() *Donation {
	d, err := s.svc.Plan(context.Background(), s.owner, PlanRequest{
		DonorPetID: s.petID.String(),
		ClinicID:   s.clinicID.String(),
		Date:       time.Now().Add(72 * time.Hour),
	})
	s.Require().NoError(err)
	return d
}

func (s *DonationSuite) TestPlanNotifiesClinicAdmin() {
	d := s.plan()
	s.Equal(domain.DonationPlanned, d.Status)

	notes := s.outbox.All()
	s.Require().Len(notes, 1)
	s.Equal(domain.TelegramID(200), notes[0].TelegramID)
}

func (s *DonationSuite) TestPlanForeignPetForbidden() {
	_, err := s.svc.Plan(context.Background(), domain.NewUserID(), PlanRequest{
		DonorPetID: s.petID.String(),
		ClinicID:   s.clinicID.String(),
		Date:       time.Now(),
	})
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
}

func (s *DonationSuite) TestSetStatusByOwnerNotifiesOwner() {
	d := s.plan()
	updated, err := s.svc.SetStatus(context.Background(), s.owner, d.ID, "completed")
	s.Require().NoError(err)
	s.Equal(domain.DonationCompleted, updated.Status)

	notes := s.outbox.All()
	s.Require().Len(notes, 2)
	s.Equal(domain.TelegramID(100), notes[1].TelegramID)
}

func (s *DonationSuite) TestSetStatusByClinicAdminAllowed() {
	d := s.plan()
	_, err := s.svc.SetStatus(context.Background(), s.admin, d.ID, "cancelled")
	s.NoError(err)
}

func (s *DonationSuite) TestSetStatusRejectsUnknownValue() {
	d := s.plan()
	_, err := s.svc.SetStatus(context.Background(), s.owner, d.ID, "postponed")
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}

func (s *DonationSuite) TestDeleteByStrangerForbidden() {
	d := s.plan()
	err := s.svc.Delete(context.Background(), domain.NewUserID(), d.ID)
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
}
