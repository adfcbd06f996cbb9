// Command server runs the vetblood HTTP API. It wires configuration,
// storage, external clients, and domain services; business logic lives in
// the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"vetblood/internal/audit"
	"vetblood/internal/auth"
	"vetblood/internal/bloodsearch"
	"vetblood/internal/bloodstock"
	"vetblood/internal/chat"
	"vetblood/internal/clinic"
	"vetblood/internal/donation"
	"vetblood/internal/geo"
	"vetblood/internal/media"
	"vetblood/internal/notify"
	"vetblood/internal/pet"
	"vetblood/internal/platform/config"
	"vetblood/internal/platform/httpserver"
	"vetblood/internal/platform/logger"
	"vetblood/internal/platform/metrics"
	"vetblood/internal/platform/postgres"
	platformredis "vetblood/internal/platform/redis"
	httptransport "vetblood/internal/transport/http"
	"vetblood/internal/user"
	"vetblood/pkg/domain"
	txcontext "vetblood/pkg/platform/tx"
)

const deliverInterval = 2 * time.Second

func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Auth.SessionSigningKey == "" {
		return errors.New("SESSION_SIGNING_KEY is required")
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("database schema applied")
	}

	cache, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	txr := txcontext.NewSQLRunner(db)
	auditor := audit.NewPublisher(audit.NewPostgresStore(db), log)
	outbox := notify.NewPostgresOutbox(db)

	photos, err := photoStorage(cfg.Media)
	if err != nil {
		return err
	}

	var distance geo.DistanceService = geo.NewClient(cfg.Geo, log)
	if cache != nil {
		distance = geo.NewCachedService(distance, cache, cfg.Geo.CacheTTL, m, log)
	}

	users := user.NewService(user.NewPostgresStore(db), auditor, outbox, txr, m)
	clinicStore := clinic.NewPostgresStore(db)
	clinics := clinic.NewService(clinicStore, auditor, txr)
	pets := pet.NewService(pet.NewPostgresStore(db), photos, auditor, txr)
	stocks := bloodstock.NewService(bloodstock.NewPostgresStore(db), clinicStore, auditor, txr)
	searches := bloodsearch.NewService(
		bloodsearch.NewPostgresStore(db), pets, clinics, stocks, users,
		distance, auditor, outbox, txr, m,
		otel.Tracer("vetblood/bloodsearch"), log,
		bloodsearch.Config{
			MaxDistanceKM: cfg.Matching.MaxDistanceKM,
			Concurrency:   cfg.Matching.Concurrency,
		})
	donations := donation.NewService(donation.NewPostgresStore(db), pets, clinicStore, users,
		auditor, outbox, txr)
	chats := chat.NewService(chat.NewPostgresStore(db), users, auditor, outbox, txr)

	sessions := auth.NewSessions(cfg.Auth.SessionSigningKey, cfg.Auth.SessionTTL)
	authSvc := auth.NewService(cfg.Telegram.BotToken, sessions, users)
	if cfg.Auth.ServiceToken != "" {
		authSvc.EnableServiceAuth(cfg.Auth.ServiceToken)
	}
	if cfg.Telegram.MockAuth {
		authSvc.EnableMockAuth(domain.TelegramID(cfg.Telegram.MockTelegramID))
		log.Warn("telegram mock auth enabled; do not use in production")
	}

	health := map[string]httptransport.HealthChecker{
		"postgres": pingChecker{db: db},
	}
	if cache != nil {
		health["redis"] = cache
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Metrics:        m,
		Auth:           authSvc,
		RequestTimeout: cfg.Server.RequestTimeout,
		Resources: []httptransport.ResourceHandler{
			user.NewHandler(users, log),
			pet.NewHandler(pets, log),
			clinic.NewHandler(clinics, log),
			bloodstock.NewHandler(stocks, log),
			bloodsearch.NewHandler(searches, log),
			donation.NewHandler(donations, log),
			chat.NewHandler(chats, log),
		},
		HealthChecks: health,
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	// Without Kafka the outbox is drained in process; with brokers
	// configured the relay binary owns delivery.
	if len(cfg.Kafka.Brokers) == 0 {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			return err
		}
		worker := notify.NewWorker(outbox, notify.NewTelegramSender(bot), deliverInterval, m, log)
		g.Go(func() error { return worker.Run(gctx) })
	}

	g.Go(func() error {
		log.Info("http server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func photoStorage(cfg config.Media) (media.Storage, error) {
	if cfg.Endpoint == "" {
		return media.NewInMemoryStorage(), nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return media.NewS3Storage(client, cfg.Bucket, cfg.PublicURL), nil
}

type pingChecker struct {
	db *sql.DB
}

func (p pingChecker) Health(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
