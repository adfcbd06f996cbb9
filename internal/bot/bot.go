// Package bot implements the Telegram front end. Commands and callback
// buttons are thin: they call the REST API on behalf of the sender and
// render the response. All domain rules live server-side.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	dErrors "vetblood/pkg/domain-errors"
)

const (
	callbackProfile = "profile"
	callbackMyPets  = "mypets"
)

// Bot runs the long-polling loop and dispatches updates.
type Bot struct {
	api     *tgbotapi.BotAPI
	client  *APIClient
	limiter *ChatLimiter
	logger  *slog.Logger

	pollTimeout int
}

func New(api *tgbotapi.BotAPI, client *APIClient, limiter *ChatLimiter, pollTimeout int, logger *slog.Logger) *Bot {
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	return &Bot{api: api, client: client, limiter: limiter, logger: logger, pollTimeout: pollTimeout}
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info("bot polling started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if !b.limiter.Allow(msg.Chat.ID) {
			b.reply(msg.Chat.ID, "Слишком много запросов, подождите немного.")
			return
		}
		b.handleMessage(ctx, msg)
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message == nil {
			return
		}
		if !b.limiter.Allow(cb.Message.Chat.ID) {
			return
		}
		b.handleCallback(ctx, cb)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.reply(msg.Chat.ID, "Я понимаю только команды. Наберите /help.")
		return
	}
	switch msg.Command() {
	case "start":
		b.sendStart(msg.Chat.ID)
	case "help":
		b.reply(msg.Chat.ID, helpText())
	case "profile":
		b.sendProfile(ctx, msg.Chat.ID, msg.From.ID)
	case "mypets":
		b.sendPets(ctx, msg.Chat.ID, msg.From.ID)
	default:
		b.reply(msg.Chat.ID, "Неизвестная команда. Наберите /help.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Acknowledge first so the button stops spinning even if the API call
	// below fails.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack failed", "error", err)
	}
	chatID := cb.Message.Chat.ID
	switch cb.Data {
	case callbackProfile:
		b.sendProfile(ctx, chatID, cb.From.ID)
	case callbackMyPets:
		b.sendPets(ctx, chatID, cb.From.ID)
	}
}

func (b *Bot) sendStart(chatID int64) {
	msg := tgbotapi.NewMessage(chatID,
		"Добро пожаловать в сервис донорства крови для животных!\n"+
			"Зарегистрируйтесь в мини-приложении, затем пользуйтесь кнопками ниже.")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Мой профиль", callbackProfile),
			tgbotapi.NewInlineKeyboardButtonData("Мои питомцы", callbackMyPets),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send start failed", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) sendProfile(ctx context.Context, chatID, telegramID int64) {
	p, err := b.client.Profile(ctx, telegramID)
	if err != nil {
		b.reply(chatID, userFacingError(err))
		return
	}
	b.reply(chatID, formatProfile(p))
}

func (b *Bot) sendPets(ctx context.Context, chatID, telegramID int64) {
	pets, err := b.client.Pets(ctx, telegramID)
	if err != nil {
		b.reply(chatID, userFacingError(err))
		return
	}
	b.reply(chatID, formatPets(pets))
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("send message failed", "chat_id", chatID, "error", err)
	}
}

func helpText() string {
	return strings.Join([]string{
		"/start — начало работы",
		"/profile — мой профиль",
		"/mypets — мои питомцы",
		"/help — эта справка",
	}, "\n")
}

func formatProfile(p *Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Профиль\nИмя: %s\nРоль: %s", p.FullName, roleLabel(p.Role))
	if p.Phone != "" {
		fmt.Fprintf(&sb, "\nТелефон: %s", p.Phone)
	}
	if p.Email != "" {
		fmt.Fprintf(&sb, "\nEmail: %s", p.Email)
	}
	return sb.String()
}

func formatPets(pets []PetSummary) string {
	if len(pets) == 0 {
		return "У вас пока нет питомцев."
	}
	var sb strings.Builder
	sb.WriteString("Ваши питомцы:")
	for _, p := range pets {
		fmt.Fprintf(&sb, "\n• %s (%s", p.Name, p.Species)
		if p.Breed != "" {
			fmt.Fprintf(&sb, ", %s", p.Breed)
		}
		sb.WriteString(")")
		if p.BloodType != "" {
			fmt.Fprintf(&sb, ", кровь %s", p.BloodType)
		}
	}
	return sb.String()
}

func roleLabel(role string) string {
	switch role {
	case "owner":
		return "владелец"
	case "donor":
		return "донор"
	case "clinic":
		return "администратор клиники"
	default:
		return role
	}
}

func userFacingError(err error) string {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeUnauthorized:
		return "Вы ещё не зарегистрированы. Наберите /start."
	case dErrors.CodeNotFound:
		return "Ничего не найдено."
	case dErrors.CodeUnavailable, dErrors.CodeTimeout:
		return "Сервис временно недоступен, попробуйте позже."
	default:
		return "Что-то пошло не так, попробуйте позже."
	}
}
