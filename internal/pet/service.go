package pet

import (
	"context"
	"errors"
	"time"

	"vetblood/internal/audit"
	"vetblood/internal/media"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
)

// Service implements pet management. Photo payloads are uploaded to object
// storage before the row is written; the row keeps only the public URL.
type Service struct {
	store  Store
	photos media.Storage
	audit  *audit.Publisher
	txr    txcontext.Runner
}

func NewService(store Store, photos media.Storage, auditor *audit.Publisher, txr txcontext.Runner) *Service {
	return &Service{store: store, photos: photos, audit: auditor, txr: txr}
}

func (s *Service) Create(ctx context.Context, ownerID domain.UserID, req CreateRequest) (*Pet, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	photoURL, err := s.uploadPhoto(ctx, req.PhotoBase64)
	if err != nil {
		return nil, err
	}

	p := &Pet{
		ID:        domain.NewPetID(),
		OwnerID:   ownerID,
		Name:      req.Name,
		Species:   req.Species,
		Breed:     req.Breed,
		WeightKg:  req.WeightKg,
		PhotoURL:  photoURL,
		Location:  req.Location,
		BloodType: req.BloodType,
		CreatedAt: time.Now(),
	}
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create pet")
		}
		return s.audit.Emit(ctx, ownerID, audit.ActionPetCreate, map[string]any{"pet_id": p.ID.String()})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]Pet, error) {
	pets, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pets")
	}
	return pets, nil
}

func (s *Service) Update(ctx context.Context, actorID domain.UserID, id domain.PetID, req UpdateRequest) (*Pet, error) {
	p, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Breed != nil {
		p.Breed = *req.Breed
	}
	if req.WeightKg != nil {
		p.WeightKg = *req.WeightKg
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.BloodType != nil {
		p.BloodType = *req.BloodType
	}
	if req.PhotoBase64 != nil {
		url, err := s.uploadPhoto(ctx, *req.PhotoBase64)
		if err != nil {
			return nil, err
		}
		p.PhotoURL = url
	}
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update pet")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionPetUpdate, map[string]any{"pet_id": id.String()})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, actorID domain.UserID, id domain.PetID) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	return s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete pet")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionPetDelete, map[string]any{"pet_id": id.String()})
	})
}

// Get loads a pet without an ownership check, for the matching workflow.
func (s *Service) Get(ctx context.Context, id domain.PetID) (*Pet, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "pet not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pet")
	}
	return p, nil
}

func (s *Service) uploadPhoto(ctx context.Context, encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	data, contentType, err := media.DecodePhoto(encoded)
	if err != nil {
		return "", err
	}
	return s.photos.UploadPhoto(ctx, media.PhotoKey(), data, contentType)
}

func (s *Service) owned(ctx context.Context, actorID domain.UserID, id domain.PetID) (*Pet, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "pet not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pet")
	}
	if p.OwnerID != actorID {
		return nil, dErrors.New(dErrors.CodeForbidden, "pet belongs to another user")
	}
	return p, nil
}
