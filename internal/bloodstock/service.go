package bloodstock

import (
	"context"
	"errors"
	"time"

	"vetblood/internal/audit"
	"vetblood/internal/clinic"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
)

// ClinicDirectory is the slice of the clinic store the stock service needs
// for ownership checks.
type ClinicDirectory interface {
	GetByID(ctx context.Context, id domain.ClinicID) (*clinic.Clinic, error)
}

// Service implements stock management and booking. Stock mutations require
// the actor to administer the owning clinic; booking is open to any
// registered user and flips an active unit to booked.
type Service struct {
	store   Store
	clinics ClinicDirectory
	audit   *audit.Publisher
	txr     txcontext.Runner
}

func NewService(store Store, clinics ClinicDirectory, auditor *audit.Publisher, txr txcontext.Runner) *Service {
	return &Service{store: store, clinics: clinics, audit: auditor, txr: txr}
}

func (s *Service) Create(ctx context.Context, actorID domain.UserID, req CreateRequest) (*Stock, error) {
	clinicID, err := req.validate()
	if err != nil {
		return nil, err
	}
	if err := s.requireClinicAdmin(ctx, actorID, clinicID); err != nil {
		return nil, err
	}

	st := &Stock{
		ID:             domain.NewStockID(),
		ClinicID:       clinicID,
		BloodType:      req.BloodType,
		VolumeML:       req.VolumeML,
		PriceRub:       req.PriceRub,
		ExpirationDate: req.ExpirationDate,
		Status:         domain.StockActive,
		CreatedAt:      time.Now(),
	}
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, st); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create blood stock")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionStockCreate, map[string]any{"stock_id": st.ID.String()})
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) List(ctx context.Context) ([]Stock, error) {
	stocks, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blood stocks")
	}
	return stocks, nil
}

func (s *Service) Update(ctx context.Context, actorID domain.UserID, id domain.StockID, req UpdateRequest) (*Stock, error) {
	st, err := s.ownedStock(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if req.BloodType != nil {
		st.BloodType = *req.BloodType
	}
	if req.VolumeML != nil {
		if *req.VolumeML <= 0 {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "volume_ml must be positive")
		}
		st.VolumeML = *req.VolumeML
	}
	if req.PriceRub != nil {
		st.PriceRub = *req.PriceRub
	}
	if req.ExpirationDate != nil {
		st.ExpirationDate = req.ExpirationDate
	}
	if req.Status != nil {
		status, err := domain.ParseStockStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		st.Status = status
	}
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, st); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update blood stock")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionStockUpdate, map[string]any{"stock_id": id.String()})
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) Delete(ctx context.Context, actorID domain.UserID, id domain.StockID) error {
	if _, err := s.ownedStock(ctx, actorID, id); err != nil {
		return err
	}
	return s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete blood stock")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionStockDelete, map[string]any{"stock_id": id.String()})
	})
}

// Book reserves an active stock unit. Booking an already booked or expired
// unit is a conflict.
func (s *Service) Book(ctx context.Context, actorID domain.UserID, id domain.StockID) (*Stock, error) {
	st, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "blood stock not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood stock")
	}
	if st.Status != domain.StockActive {
		return nil, dErrors.Newf(dErrors.CodeConflict, "blood stock is %s", st.Status)
	}
	if st.ExpirationDate != nil && st.ExpirationDate.Before(time.Now()) {
		return nil, dErrors.New(dErrors.CodeConflict, "blood stock is expired")
	}

	st.Status = domain.StockBooked
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, st); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to book blood stock")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionStockBook, map[string]any{"stock_id": id.String()})
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// HasActive exposes the stock-availability check to the matching workflow.
func (s *Service) HasActive(ctx context.Context, clinicID domain.ClinicID, bloodType string) (bool, error) {
	return s.store.HasActive(ctx, clinicID, bloodType)
}

func (s *Service) ownedStock(ctx context.Context, actorID domain.UserID, id domain.StockID) (*Stock, error) {
	st, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "blood stock not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood stock")
	}
	if err := s.requireClinicAdmin(ctx, actorID, st.ClinicID); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) requireClinicAdmin(ctx context.Context, actorID domain.UserID, clinicID domain.ClinicID) error {
	c, err := s.clinics.GetByID(ctx, clinicID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "clinic not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load clinic")
	}
	if c.OwnerID != actorID {
		return dErrors.New(dErrors.CodeForbidden, "clinic belongs to another user")
	}
	return nil
}
