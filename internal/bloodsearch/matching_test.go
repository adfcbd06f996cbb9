package bloodsearch

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"

	"vetblood/internal/audit"
	"vetblood/internal/bloodstock"
	"vetblood/internal/clinic"
	"vetblood/internal/notify"
	"vetblood/internal/pet"
	"vetblood/internal/platform/metrics"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	txcontext "vetblood/pkg/platform/tx"
)

// stubDistance returns per-destination distances and optional per-destination
// failures, keyed by latitude.
type stubDistance struct {
	km   map[float64]float64
	fail map[float64]error
}

func (d *stubDistance) Distance(_ context.Context, _, to domain.Location) (float64, error) {
	if err, ok := d.fail[to.Latitude]; ok {
		return 0, err
	}
	return d.km[to.Latitude], nil
}

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

type MatchingSuite struct {
	suite.Suite
	svc      *Service
	pets     *pet.InMemoryStore
	clinics  *clinic.InMemoryStore
	stocks   *bloodstock.InMemoryStore
	users    *stubUsers
	distance *stubDistance
	outbox   *notify.InMemoryOutbox

	owner domain.UserID
	petID domain.PetID
}

func (s *MatchingSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.pets = pet.NewInMemoryStore()
	s.clinics = clinic.NewInMemoryStore()
	s.stocks = bloodstock.NewInMemoryStore()
	s.users = &stubUsers{chats: make(map[domain.UserID]domain.TelegramID)}
	s.distance = &stubDistance{km: make(map[float64]float64), fail: make(map[float64]error)}
	s.outbox = notify.NewInMemoryOutbox()

	s.owner = domain.NewUserID()
	s.users.chats[s.owner] = 100

	s.petID = domain.NewPetID()
	s.Require().NoError(s.pets.Create(context.Background(), &pet.Pet{
		ID:        s.petID,
		OwnerID:   s.owner,
		Name:      "Bobik",
		Species:   "dog",
		Location:  domain.Location{Latitude: 55.0, Longitude: 37.0},
		BloodType: "A",
	}))

	s.svc = NewService(
		NewInMemoryStore(),
		petDir{s.pets},
		s.clinics,
		s.stocks,
		s.users,
		s.distance,
		audit.NewPublisher(audit.NewInMemoryStore(), logger),
		s.outbox,
		txcontext.NopRunner{},
		metrics.New(prometheus.NewRegistry()),
		noop.NewTracerProvider().Tracer("test"),
		logger,
		Config{MaxDistanceKM: 50, Concurrency: 4},
	)
}

func TestMatchingSuite(t *testing.T) {
	suite.Run(t, new(MatchingSuite))
}

// addClinic registers a clinic whose stub distance is keyed by lat.
func (s *MatchingSuite) addClinic(lat, km float64, bloodTypes ...string) domain.ClinicID {
	admin := domain.NewUserID()
	s.users.chats[admin] = domain.TelegramID(1000 + int64(lat*10))
	id := domain.NewClinicID()
	s.Require().NoError(s.clinics.Create(context.Background(), &clinic.Clinic{
		ID:       id,
		OwnerID:  admin,
		Name:     "clinic",
		Location: domain.Location{Latitude: lat, Longitude: 37.6},
	}))
	s.distance.km[lat] = km
	for _, bt := range bloodTypes {
		s.Require().NoError(s.stocks.Create(context.Background(), &bloodstock.Stock{
			ID:        domain.NewStockID(),
			ClinicID:  id,
			BloodType: bt,
			VolumeML:  450,
			Status:    domain.StockActive,
		}))
	}
	return id
}

func (s *MatchingSuite) TestQualifyingSetScenario() {
	c1 := s.addClinic(56.1, 10, "A") // near, right type
	s.addClinic(56.2, 80, "A")       // too far
	s.addClinic(56.3, 5, "B")        // near, wrong type

	sr, err := s.svc.Run(context.Background(), s.owner, s.petID)
	s.Require().NoError(err)
	s.Require().Len(sr.QualifyingClinics, 1)
	s.Equal(c1, sr.QualifyingClinics[0])
	s.Equal(domain.SearchActive, sr.Status)

	// One notification for C1's admin, one for the requester with the count.
	notes := s.outbox.All()
	s.Require().Len(notes, 2)
	s.Contains(notes[1].Text, "1")
	s.Equal(domain.TelegramID(100), notes[1].TelegramID)
}

func (s *MatchingSuite) TestExactThresholdExcluded() {
	s.addClinic(56.1, 50, "A")

	sr, err := s.svc.Run(context.Background(), s.owner, s.petID)
	s.Require().NoError(err)
	s.Empty(sr.QualifyingClinics, "a clinic at exactly the threshold does not qualify")
}

func (s *MatchingSuite) TestFailedLookupExcludesOnlyThatClinic() {
	c1 := s.addClinic(56.1, 10, "A")
	s.addClinic(56.2, 12, "A")
	s.distance.fail[56.2] = errors.New("routing API down")

	sr, err := s.svc.Run(context.Background(), s.owner, s.petID)
	s.Require().NoError(err, "one failed lookup must not abort the search")
	s.Require().Len(sr.QualifyingClinics, 1)
	s.Equal(c1, sr.QualifyingClinics[0])
}

func (s *MatchingSuite) TestBookedStockDoesNotQualify() {
	id := s.addClinic(56.1, 10)
	s.Require().NoError(s.stocks.Create(context.Background(), &bloodstock.Stock{
		ID:        domain.NewStockID(),
		ClinicID:  id,
		BloodType: "A",
		VolumeML:  450,
		Status:    domain.StockBooked,
	}))

	sr, err := s.svc.Run(context.Background(), s.owner, s.petID)
	s.Require().NoError(err)
	s.Empty(sr.QualifyingClinics)
}

func (s *MatchingSuite) TestPetWithoutLocationRejected() {
	bare := domain.NewPetID()
	s.Require().NoError(s.pets.Create(context.Background(), &pet.Pet{
		ID:        bare,
		OwnerID:   s.owner,
		Name:      "Murka",
		Species:   "cat",
		BloodType: "A",
	}))

	_, err := s.svc.Run(context.Background(), s.owner, bare)
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}

func (s *MatchingSuite) TestForeignPetForbidden() {
	_, err := s.svc.Run(context.Background(), domain.NewUserID(), s.petID)
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
}
