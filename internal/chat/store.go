package chat

import (
	"context"

	"vetblood/pkg/domain"
)

// Store persists chats and their messages. Implementations return sentinel
// errors; the service translates them into coded domain errors.
type Store interface {
	CreateChat(ctx context.Context, c *Chat) error
	GetChat(ctx context.Context, id domain.ChatID) (*Chat, error)
	ListChats(ctx context.Context, participant domain.UserID) ([]Chat, error)
	DeleteChat(ctx context.Context, id domain.ChatID) error

	AppendMessage(ctx context.Context, m *Message) error
	GetMessage(ctx context.Context, id domain.MessageID) (*Message, error)
	// ListMessages returns a chat's messages ordered by timestamp ascending.
	ListMessages(ctx context.Context, chatID domain.ChatID) ([]Message, error)
	DeleteMessage(ctx context.Context, id domain.MessageID) error
}
