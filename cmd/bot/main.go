// Command bot runs the Telegram front end. It talks to the REST API with
// the shared service token and never touches the database directly.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vetblood/internal/bot"
	"vetblood/internal/platform/config"
	"vetblood/internal/platform/logger"
)

func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("bot exited", "error", err)
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
	if cfg.Auth.ServiceToken == "" {
		return errors.New("SERVICE_AUTH_TOKEN is required for the bot")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return err
	}

	b := bot.New(
		api,
		bot.NewAPIClient(cfg.Bot.APIBaseURL, cfg.Auth.ServiceToken),
		bot.NewChatLimiter(cfg.Bot.RateLimit, cfg.Bot.RateWindow),
		cfg.Bot.PollTimeout,
		log,
	)

	err = b.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
