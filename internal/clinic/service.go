package clinic

import (
	"context"
	"errors"
	"time"

	"vetblood/internal/audit"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
)

// Service implements clinic management. Mutations require the acting user to
// own the clinic; listing is open to every registered user so the matching
// workflow and the mini-app map can see all clinics.
type Service struct {
	store Store
	audit *audit.Publisher
	txr   txcontext.Runner
}

func NewService(store Store, auditor *audit.Publisher, txr txcontext.Runner) *Service {
	return &Service{store: store, audit: auditor, txr: txr}
}

func (s *Service) Create(ctx context.Context, ownerID domain.UserID, req CreateRequest) (*Clinic, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	c := &Clinic{
		ID:        domain.NewClinicID(),
		OwnerID:   ownerID,
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		WorkHours: req.WorkHours,
		Location:  req.Location,
		CreatedAt: time.Now(),
	}
	err := s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create clinic")
		}
		return s.audit.Emit(ctx, ownerID, audit.ActionClinicCreate, map[string]any{"clinic_id": c.ID.String()})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]Clinic, error) {
	clinics, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clinics")
	}
	return clinics, nil
}

func (s *Service) Update(ctx context.Context, actorID domain.UserID, id domain.ClinicID, req UpdateRequest) (*Clinic, error) {
	c, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Phone != nil {
		c.Phone = *req.Phone
	}
	if req.Address != nil {
		c.Address = *req.Address
	}
	if req.WorkHours != nil {
		c.WorkHours = *req.WorkHours
	}
	if req.Location != nil {
		if req.Location.IsZero() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "location must not be empty")
		}
		c.Location = *req.Location
	}
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update clinic")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionClinicUpdate, map[string]any{"clinic_id": id.String()})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, actorID domain.UserID, id domain.ClinicID) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	return s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete clinic")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionClinicDelete, map[string]any{"clinic_id": id.String()})
	})
}

// owned loads a clinic and checks the actor administers it.
func (s *Service) owned(ctx context.Context, actorID domain.UserID, id domain.ClinicID) (*Clinic, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "clinic not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load clinic")
	}
	if c.OwnerID != actorID {
		return nil, dErrors.New(dErrors.CodeForbidden, "clinic belongs to another user")
	}
	return c, nil
}
