package bloodsearch

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"vetblood/internal/audit"
	"vetblood/internal/clinic"
	"vetblood/internal/geo"
	"vetblood/internal/notify"
	"vetblood/internal/pet"
	"vetblood/internal/platform/metrics"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
)

// PetDirectory is the slice of the pet service the search workflow needs.
type PetDirectory interface {
	Get(ctx context.Context, id domain.PetID) (*pet.Pet, error)
}

// ClinicDirectory lists candidate clinics for matching.
type ClinicDirectory interface {
	List(ctx context.Context) ([]clinic.Clinic, error)
}

// StockChecker answers whether a clinic holds active stock of a blood type.
type StockChecker interface {
	HasActive(ctx context.Context, clinicID domain.ClinicID, bloodType string) (bool, error)
}

// UserDirectory resolves notification targets.
type UserDirectory interface {
	TelegramIDOf(ctx context.Context, id domain.UserID) (domain.TelegramID, error)
}

// Service implements blood search CRUD and the clinic matching workflow.
type Service struct {
	store    Store
	pets     PetDirectory
	clinics  ClinicDirectory
	stocks   StockChecker
	users    UserDirectory
	distance geo.DistanceService
	audit    *audit.Publisher
	outbox   notify.Enqueuer
	txr      txcontext.Runner
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	logger   *slog.Logger

	maxDistanceKM float64
	concurrency   int
}

type Config struct {
	MaxDistanceKM float64
	Concurrency   int
}

func NewService(
	store Store,
	pets PetDirectory,
	clinics ClinicDirectory,
	stocks StockChecker,
	users UserDirectory,
	distance geo.DistanceService,
	auditor *audit.Publisher,
	outbox notify.Enqueuer,
	txr txcontext.Runner,
	m *metrics.Metrics,
	tracer trace.Tracer,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.MaxDistanceKM <= 0 {
		cfg.MaxDistanceKM = 50
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	return &Service{
		store:         store,
		pets:          pets,
		clinics:       clinics,
		stocks:        stocks,
		users:         users,
		distance:      distance,
		audit:         auditor,
		outbox:        outbox,
		txr:           txr,
		metrics:       m,
		tracer:        tracer,
		logger:        logger,
		maxDistanceKM: cfg.MaxDistanceKM,
		concurrency:   cfg.Concurrency,
	}
}

// Create runs the matching workflow for the pet and persists the resulting
// search. Only the pet's owner may request blood for it.
func (s *Service) Create(ctx context.Context, requesterID domain.UserID, req CreateRequest) (*Search, error) {
	petID, err := domain.ParsePetID(req.PetID)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, requesterID, petID)
}

func (s *Service) ListByRequester(ctx context.Context, requesterID domain.UserID) ([]Search, error) {
	searches, err := s.store.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blood searches")
	}
	return searches, nil
}

func (s *Service) Update(ctx context.Context, actorID domain.UserID, id domain.SearchID, req UpdateRequest) (*Search, error) {
	sr, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		status, err := domain.ParseSearchStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		sr.Status = status
	}
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, sr); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update blood search")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionSearchUpdate, map[string]any{"search_id": id.String()})
	})
	if err != nil {
		return nil, err
	}
	return sr, nil
}

func (s *Service) Delete(ctx context.Context, actorID domain.UserID, id domain.SearchID) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	return s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete blood search")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionSearchDelete, map[string]any{"search_id": id.String()})
	})
}

func (s *Service) owned(ctx context.Context, actorID domain.UserID, id domain.SearchID) (*Search, error) {
	sr, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "blood search not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load blood search")
	}
	if sr.RequesterID != actorID {
		return nil, dErrors.New(dErrors.CodeForbidden, "blood search belongs to another user")
	}
	return sr, nil
}
