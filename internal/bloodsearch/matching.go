package bloodsearch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"vetblood/internal/audit"
	"vetblood/internal/clinic"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
)

// Run executes the matching workflow: fan out distance lookups over all
// clinics with bounded concurrency, keep clinics strictly closer than the
// threshold that hold active stock of the required type, then persist the
// search, its audit entry, and the notifications in one transaction.
//
// A failed distance lookup excludes that clinic and is logged; it never
// aborts the run. Notification delivery happens later via the outbox relay.
func (s *Service) Run(ctx context.Context, requesterID domain.UserID, petID domain.PetID) (*Search, error) {
	ctx, span := s.tracer.Start(ctx, "bloodsearch.Run")
	defer span.End()
	started := time.Now()

	p, err := s.pets.Get(ctx, petID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != requesterID {
		return nil, dErrors.New(dErrors.CodeForbidden, "pet belongs to another user")
	}
	if p.Location.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "pet has no recorded location")
	}
	if p.BloodType == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "pet has no recorded blood type")
	}

	clinics, err := s.clinics.List(ctx)
	if err != nil {
		return nil, err
	}

	nearby := s.clinicsWithinRange(ctx, p.Location, clinics)

	var qualifying []clinic.Clinic
	for _, c := range nearby {
		held, err := s.stocks.HasActive(ctx, c.ID, p.BloodType)
		if err != nil {
			s.logger.WarnContext(ctx, "stock check failed, excluding clinic",
				"clinic_id", c.ID, "error", err.Error())
			continue
		}
		if held {
			qualifying = append(qualifying, c)
		}
	}

	clinicIDs := make([]domain.ClinicID, len(qualifying))
	for i, c := range qualifying {
		clinicIDs[i] = c.ID
	}

	sr := &Search{
		ID:                domain.NewSearchID(),
		PetID:             petID,
		RequesterID:       requesterID,
		BloodType:         p.BloodType,
		Status:            domain.SearchActive,
		QualifyingClinics: clinicIDs,
		CreatedAt:         time.Now(),
	}

	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Create(ctx, sr); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create blood search")
		}
		if err := s.audit.Emit(ctx, requesterID, audit.ActionSearchCreate, map[string]any{
			"search_id":          sr.ID.String(),
			"pet_id":             petID.String(),
			"qualifying_clinics": len(clinicIDs),
		}); err != nil {
			return err
		}
		return s.enqueueNotifications(ctx, p.Name, p.BloodType, requesterID, qualifying)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SearchesCreated.Inc()
	s.metrics.MatchingDuration.Observe(time.Since(started).Seconds())
	span.SetAttributes(
		attribute.Int("clinics.total", len(clinics)),
		attribute.Int("clinics.qualifying", len(clinicIDs)),
	)
	return sr, nil
}

// clinicsWithinRange computes road distances with bounded concurrency and
// keeps clinics strictly closer than the threshold. Failed lookups exclude
// only the clinic that failed.
func (s *Service) clinicsWithinRange(ctx context.Context, from domain.Location, clinics []clinic.Clinic) []clinic.Clinic {
	var (
		mu     sync.Mutex
		within []clinic.Clinic
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, c := range clinics {
		g.Go(func() error {
			if c.Location.IsZero() {
				s.metrics.ObserveClinicLookup("no_location")
				return nil
			}
			km, err := s.distance.Distance(ctx, from, c.Location)
			if err != nil {
				s.metrics.ObserveClinicLookup("failed")
				s.logger.WarnContext(ctx, "distance lookup failed, excluding clinic",
					"clinic_id", c.ID, "error", err.Error())
				return nil
			}
			s.metrics.ObserveClinicLookup("ok")
			if km < s.maxDistanceKM {
				mu.Lock()
				within = append(within, c)
				mu.Unlock()
			}
			return nil
		})
	}
	// Goroutines never return errors; Wait only closes the group.
	_ = g.Wait()
	return within
}

func (s *Service) enqueueNotifications(ctx context.Context, petName, bloodType string, requesterID domain.UserID, qualifying []clinic.Clinic) error {
	clinicText := fmt.Sprintf(
		"Поступил запрос на кровь типа %s для питомца %s. Проверьте ваши запасы.",
		bloodType, petName,
	)
	for _, c := range qualifying {
		to, err := s.users.TelegramIDOf(ctx, c.OwnerID)
		if err != nil {
			s.logger.WarnContext(ctx, "clinic admin unresolved, skipping notification",
				"clinic_id", c.ID, "error", err.Error())
			continue
		}
		if err := s.outbox.Enqueue(ctx, to, clinicText); err != nil {
			return err
		}
		s.metrics.NotificationsEnqueued.Inc()
	}

	to, err := s.users.TelegramIDOf(ctx, requesterID)
	if err != nil {
		return err
	}
	requesterText := fmt.Sprintf("Найдено клиник с подходящей кровью: %d.", len(qualifying))
	if err := s.outbox.Enqueue(ctx, to, requesterText); err != nil {
		return err
	}
	s.metrics.NotificationsEnqueued.Inc()
	return nil
}
