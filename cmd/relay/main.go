// Command relay moves pending outbox notifications through Kafka and
// delivers them to Telegram. It runs the producer side (outbox -> topic)
// and the consumer side (topic -> Telegram) in one process; more
// instances in the same consumer group scale delivery out.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"vetblood/internal/notify"
	"vetblood/internal/platform/config"
	"vetblood/internal/platform/logger"
	"vetblood/internal/platform/metrics"
	"vetblood/internal/platform/postgres"
)

const relayInterval = 2 * time.Second

func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("relay exited", "error", err)
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
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required for the relay")
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	producer, err := kgo.NewClient(kgo.SeedBrokers(cfg.Kafka.Brokers...))
	if err != nil {
		return err
	}
	defer producer.Close()

	if err := notify.EnsureTopic(ctx, producer, cfg.Kafka.Topic); err != nil {
		return err
	}

	consumerClient, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Kafka.Brokers...),
		kgo.ConsumeTopics(cfg.Kafka.Topic),
		kgo.ConsumerGroup(cfg.Kafka.Group),
	)
	if err != nil {
		return err
	}
	defer consumerClient.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	outbox := notify.NewPostgresOutbox(db)
	relay := notify.NewRelay(outbox, producer, cfg.Kafka.Topic, relayInterval, m, log)
	consumer := notify.NewConsumer(consumerClient, outbox, notify.NewTelegramSender(bot), m, log)

	log.Info("relay starting", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return relay.Run(gctx) })
	g.Go(func() error { return consumer.Run(gctx) })

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
