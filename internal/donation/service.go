package donation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vetblood/internal/audit"
	"vetblood/internal/clinic"
	"vetblood/internal/notify"
	"vetblood/internal/pet"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
)

// PetDirectory resolves donor pets for ownership checks.
type PetDirectory interface {
	Get(ctx context.Context, id domain.PetID) (*pet.Pet, error)
}

// ClinicDirectory resolves the hosting clinic and its admin.
type ClinicDirectory interface {
	GetByID(ctx context.Context, id domain.ClinicID) (*clinic.Clinic, error)
}

// UserDirectory resolves notification targets.
type UserDirectory interface {
	TelegramIDOf(ctx context.Context, id domain.UserID) (domain.TelegramID, error)
}

// Service implements donation planning. Planning notifies the hosting
// clinic's admin; status changes notify the donor's owner. Both go through
// the outbox inside the planning transaction.
type Service struct {
	store   Store
	pets    PetDirectory
	clinics ClinicDirectory
	users   UserDirectory
	audit   *audit.Publisher
	outbox  notify.Enqueuer
	txr     txcontext.Runner
}

func NewService(store Store, pets PetDirectory, clinics ClinicDirectory, users UserDirectory,
	auditor *audit.Publisher, outbox notify.Enqueuer, txr txcontext.Runner) *Service {
	return &Service{store: store, pets: pets, clinics: clinics, users: users,
		audit: auditor, outbox: outbox, txr: txr}
}

func (s *Service) Plan(ctx context.Context, actorID domain.UserID, req PlanRequest) (*Donation, error) {
	petID, clinicID, err := req.validate()
	if err != nil {
		return nil, err
	}

	p, err := s.pets.Get(ctx, petID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != actorID {
		return nil, dErrors.New(dErrors.CodeForbidden, "donor pet belongs to another user")
	}

	c, err := s.clinics.GetByID(ctx, clinicID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "clinic not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load clinic")
	}

	d := &Donation{
		ID:         domain.NewDonationID(),
		OwnerID:    actorID,
		DonorPetID: petID,
		ClinicID:   clinicID,
		Date:       req.Date,
		Status:     domain.DonationPlanned,
		CreatedAt:  time.Now(),
	}
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, d); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to plan donation")
		}
		if err := s.audit.Emit(ctx, actorID, audit.ActionDonationPlan, map[string]any{"donation_id": d.ID.String()}); err != nil {
			return err
		}
		to, err := s.users.TelegramIDOf(ctx, c.OwnerID)
		if err != nil {
			return err
		}
		text := fmt.Sprintf("Запланировано донорство: питомец %s, дата %s.",
			p.Name, req.Date.Format("02.01.2006"))
		return s.outbox.Enqueue(ctx, to, text)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]Donation, error) {
	donations, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donations")
	}
	return donations, nil
}

// SetStatus moves a donation through its lifecycle. The donor's owner and
// the hosting clinic's admin may both change it.
func (s *Service) SetStatus(ctx context.Context, actorID domain.UserID, id domain.DonationID, status string) (*Donation, error) {
	parsed, err := domain.ParseDonationStatus(status)
	if err != nil {
		return nil, err
	}
	d, err := s.authorized(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	d.Status = parsed
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, d); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update donation")
		}
		if err := s.audit.Emit(ctx, actorID, audit.ActionDonationUpdate, map[string]any{
			"donation_id": id.String(), "status": string(parsed),
		}); err != nil {
			return err
		}
		to, err := s.users.TelegramIDOf(ctx, d.OwnerID)
		if err != nil {
			return err
		}
		return s.outbox.Enqueue(ctx, to, fmt.Sprintf("Статус донорства изменён: %s.", parsed))
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, actorID domain.UserID, id domain.DonationID) error {
	if _, err := s.authorized(ctx, actorID, id); err != nil {
		return err
	}
	return s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete donation")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionDonationDelete, map[string]any{"donation_id": id.String()})
	})
}

// authorized loads a donation and checks the actor is the donor's owner or
// the hosting clinic's admin.
func (s *Service) authorized(ctx context.Context, actorID domain.UserID, id domain.DonationID) (*Donation, error) {
	d, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donation not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donation")
	}
	if d.OwnerID == actorID {
		return d, nil
	}
	c, err := s.clinics.GetByID(ctx, d.ClinicID)
	if err == nil && c.OwnerID == actorID {
		return d, nil
	}
	return nil, dErrors.New(dErrors.CodeForbidden, "donation belongs to another user")
}
