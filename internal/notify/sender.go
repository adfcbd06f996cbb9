package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"vetblood/pkg/domain"
)

// Sender delivers a message to a Telegram chat.
type Sender interface {
	Send(ctx context.Context, to domain.TelegramID, text string) error
}

// TelegramSender delivers via the Bot API.
type TelegramSender struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramSender(bot *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{bot: bot}
}

func (s *TelegramSender) Send(ctx context.Context, to domain.TelegramID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(int64(to), text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
