package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vetblood/internal/audit"
	"vetblood/internal/notify"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	"vetblood/pkg/platform/sentinel"
	txcontext "vetblood/pkg/platform/tx"
)

// UserDirectory resolves notification targets.
type UserDirectory interface {
	TelegramIDOf(ctx context.Context, id domain.UserID) (domain.TelegramID, error)
}

// Service implements chats and messages. A sent message is committed before
// any delivery attempt: the notification goes to the outbox in the same
// transaction and is delivered asynchronously, so a delivery failure can
// never roll the message back.
type Service struct {
	store  Store
	users  UserDirectory
	audit  *audit.Publisher
	outbox notify.Enqueuer
	txr    txcontext.Runner
}

func NewService(store Store, users UserDirectory, auditor *audit.Publisher, outbox notify.Enqueuer, txr txcontext.Runner) *Service {
	return &Service{store: store, users: users, audit: auditor, outbox: outbox, txr: txr}
}

// CreateChat opens a chat between the acting user (recipient side) and a
// donor's owner.
func (s *Service) CreateChat(ctx context.Context, actorID domain.UserID, req CreateChatRequest) (*Chat, error) {
	donorID, err := domain.ParseUserID(req.DonorID)
	if err != nil {
		return nil, err
	}
	if donorID == actorID {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "cannot open a chat with yourself")
	}
	if _, err := s.users.TelegramIDOf(ctx, donorID); err != nil {
		return nil, err
	}

	c := &Chat{
		ID:          domain.NewChatID(),
		RecipientID: actorID,
		DonorID:     donorID,
		CreatedAt:   time.Now(),
	}
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateChat(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create chat")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionChatCreate, map[string]any{"chat_id": c.ID.String()})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListChats(ctx context.Context, actorID domain.UserID) ([]Chat, error) {
	chats, err := s.store.ListChats(ctx, actorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list chats")
	}
	return chats, nil
}

func (s *Service) DeleteChat(ctx context.Context, actorID domain.UserID, id domain.ChatID) error {
	if _, err := s.participantChat(ctx, actorID, id); err != nil {
		return err
	}
	return s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteChat(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete chat")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionChatDelete, map[string]any{"chat_id": id.String()})
	})
}

// SendMessage appends a message and enqueues a notification for the other
// participant.
func (s *Service) SendMessage(ctx context.Context, senderID domain.UserID, req SendMessageRequest) (*Message, error) {
	chatID, err := req.validate()
	if err != nil {
		return nil, err
	}
	c, err := s.participantChat(ctx, senderID, chatID)
	if err != nil {
		return nil, err
	}

	m := &Message{
		ID:        domain.NewMessageID(),
		ChatID:    chatID,
		SenderID:  senderID,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}
	err = s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.AppendMessage(ctx, m); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to send message")
		}
		if err := s.audit.Emit(ctx, senderID, audit.ActionMessageSend, map[string]any{"chat_id": chatID.String()}); err != nil {
			return err
		}
		to, err := s.users.TelegramIDOf(ctx, c.OtherParty(senderID))
		if err != nil {
			return err
		}
		return s.outbox.Enqueue(ctx, to, fmt.Sprintf("Новое сообщение: %s", req.Text))
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessages returns a chat's messages, oldest first.
func (s *Service) ListMessages(ctx context.Context, actorID domain.UserID, chatID domain.ChatID) ([]Message, error) {
	if _, err := s.participantChat(ctx, actorID, chatID); err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list messages")
	}
	return messages, nil
}

// DeleteMessage removes a message; only its sender may do so.
func (s *Service) DeleteMessage(ctx context.Context, actorID domain.UserID, id domain.MessageID) error {
	m, err := s.store.GetMessage(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "message not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load message")
	}
	if m.SenderID != actorID {
		return dErrors.New(dErrors.CodeForbidden, "message belongs to another user")
	}
	return s.txr.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteMessage(ctx, id); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete message")
		}
		return s.audit.Emit(ctx, actorID, audit.ActionMessageDelete, map[string]any{"message_id": id.String()})
	})
}

func (s *Service) participantChat(ctx context.Context, actorID domain.UserID, id domain.ChatID) (*Chat, error) {
	c, err := s.store.GetChat(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "chat not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load chat")
	}
	if !c.Involves(actorID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "chat belongs to other users")
	}
	return c, nil
}
