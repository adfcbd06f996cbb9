package chat

import (
	"strings"
	"time"

	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
)

// Chat pairs the recipient's owner with a donor's owner.
type Chat struct {
	ID          domain.ChatID `json:"id"`
	RecipientID domain.UserID `json:"recipient_id"`
	DonorID     domain.UserID `json:"donor_id"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Involves reports whether the user participates in the chat.
func (c *Chat) Involves(id domain.UserID) bool {
	return c.RecipientID == id || c.DonorID == id
}

// OtherParty returns the participant that is not the given user.
func (c *Chat) OtherParty(id domain.UserID) domain.UserID {
	if c.RecipientID == id {
		return c.DonorID
	}
	return c.RecipientID
}

// Message is an append-only chat entry, ordered by timestamp ascending.
type Message struct {
	ID        domain.MessageID `json:"id"`
	ChatID    domain.ChatID    `json:"chat_id"`
	SenderID  domain.UserID    `json:"sender_id"`
	Text      string           `json:"text"`
	CreatedAt time.Time        `json:"created_at"`
}

type CreateChatRequest struct {
	DonorID string `json:"donor_id"`
}

type SendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func (r SendMessageRequest) validate() (domain.ChatID, error) {
	chatID, err := domain.ParseChatID(r.ChatID)
	if err != nil {
		return domain.ChatID{}, err
	}
	if strings.TrimSpace(r.Text) == "" {
		return domain.ChatID{}, dErrors.New(dErrors.CodeInvalidInput, "text is required")
	}
	return chatID, nil
}
