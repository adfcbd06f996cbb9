package chat

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"vetblood/internal/audit"
	"vetblood/internal/notify"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	txcontext "vetblood/pkg/platform/tx"
)

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

type ChatSuite struct {
	suite.Suite
	svc    *Service
	store  *InMemoryStore
	outbox *notify.InMemoryOutbox

	recipient domain.UserID
	donor     domain.UserID
}

func (s *ChatSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.store = NewInMemoryStore()
	s.outbox = notify.NewInMemoryOutbox()
	s.recipient = domain.NewUserID()
	s.donor = domain.NewUserID()
	users := &stubUsers{chats: map[domain.UserID]domain.TelegramID{
		s.recipient: 100,
		s.donor:     200,
	}}
	s.svc = NewService(s.store, users,
		audit.NewPublisher(audit.NewInMemoryStore(), logger), s.outbox, txcontext.NopRunner{})
}

func TestChatSuite(t *testing.T) {
	suite.Run(t, new(ChatSuite))
}

func (s *ChatSuite) open() *Chat {
	c, err := s.svc.CreateChat(context.Background(), s.recipient, CreateChatRequest{DonorID: s.donor.String()})
	s.Require().NoError(err)
	return c
}

func (s *ChatSuite) TestCreateChatWithSelfRejected() {
	_, err := s.svc.CreateChat(context.Background(), s.recipient, CreateChatRequest{DonorID: s.recipient.String()})
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
}

func (s *ChatSuite) TestSendMessageStoresThenNotifiesOtherParty() {
	c := s.open()
	m, err := s.svc.SendMessage(context.Background(), s.recipient, SendMessageRequest{
		ChatID: c.ID.String(),
		Text:   "Здравствуйте! Ваш питомец подходит как донор.",
	})
	s.Require().NoError(err)

	messages, err := s.svc.ListMessages(context.Background(), s.donor, c.ID)
	s.Require().NoError(err)
	s.Require().Len(messages, 1)
	s.Equal(m.ID, messages[0].ID)

	notes := s.outbox.All()
	s.Require().Len(notes, 1)
	s.Equal(domain.TelegramID(200), notes[0].TelegramID, "the other party is notified, not the sender")
}

func (s *ChatSuite) TestMessagesOrderedAscending() {
	c := s.open()
	ctx := context.Background()
	for _, text := range []string{"first", "second", "third"} {
		_, err := s.svc.SendMessage(ctx, s.recipient, SendMessageRequest{ChatID: c.ID.String(), Text: text})
		s.Require().NoError(err)
	}
	messages, err := s.svc.ListMessages(ctx, s.recipient, c.ID)
	s.Require().NoError(err)
	s.Require().Len(messages, 3)
	s.Equal("first", messages[0].Text)
	s.Equal("third", messages[2].Text)
}

func (s *ChatSuite) TestOutsiderCannotReadOrWrite() {
	c := s.open()
	outsider := domain.NewUserID()

	_, err := s.svc.ListMessages(context.Background(), outsider, c.ID)
	s.True(dErrors.Is(err, dErrors.CodeForbidden))

	_, err = s.svc.SendMessage(context.Background(), outsider, SendMessageRequest{ChatID: c.ID.String(), Text: "hi"})
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
}

func (s *ChatSuite) TestDeleteMessageBySenderOnly() {
	c := s.open()
	m, err := s.svc.SendMessage(context.Background(), s.recipient, SendMessageRequest{ChatID: c.ID.String(), Text: "oops"})
	s.Require().NoError(err)

	err = s.svc.DeleteMessage(context.Background(), s.donor, m.ID)
	s.True(dErrors.Is(err, dErrors.CodeForbidden))

	s.Require().NoError(s.svc.DeleteMessage(context.Background(), s.recipient, m.ID))
}

func (s *ChatSuite) TestDeleteChatRemovesMessages() {
	c := s.open()
	_, err := s.svc.SendMessage(context.Background(), s.recipient, SendMessageRequest{ChatID: c.ID.String(), Text: "bye"})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteChat(context.Background(), s.donor, c.ID))

	_, err = s.svc.ListMessages(context.Background(), s.recipient, c.ID)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}
