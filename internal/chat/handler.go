package chat

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vetblood/internal/transport/http/shared"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
)

type HandlerService interface {
	CreateChat(ctx context.Context, actorID domain.UserID, req CreateChatRequest) (*Chat, error)
	ListChats(ctx context.Context, actorID domain.UserID) ([]Chat, error)
	DeleteChat(ctx context.Context, actorID domain.UserID, id domain.ChatID) error
	SendMessage(ctx context.Context, senderID domain.UserID, req SendMessageRequest) (*Message, error)
	ListMessages(ctx context.Context, actorID domain.UserID, chatID domain.ChatID) ([]Message, error)
	DeleteMessage(ctx context.Context, actorID domain.UserID, id domain.MessageID) error
}

type Handler struct {
	svc    HandlerService
	logger *slog.Logger
}

func NewHandler(svc HandlerService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/chats/create", h.handleCreateChat)
	r.Get("/chats", h.handleListChats)
	r.Delete("/chats/{id}", h.handleDeleteChat)
	r.Post("/chat_messages/send", h.handleSendMessage)
	r.Get("/chat_messages", h.handleListMessages)
	r.Delete("/chat_messages/{id}", h.handleDeleteMessage)
}

func (h *Handler) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req CreateChatRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	c, err := h.svc.CreateChat(ctx, ident.UserID, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	chats, err := h.svc.ListChats(ctx, ident.UserID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, chats)
}

func (h *Handler) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseChatID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteChat(ctx, ident.UserID, id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req SendMessageRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	m, err := h.svc.SendMessage(ctx, ident.UserID, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	raw := r.URL.Query().Get("chat_id")
	if raw == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "chat_id query parameter is required"))
		return
	}
	chatID, err := domain.ParseChatID(raw)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	messages, err := h.svc.ListMessages(ctx, ident.UserID, chatID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseMessageID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteMessage(ctx, ident.UserID, id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
