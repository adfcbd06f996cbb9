package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vetblood/internal/platform/middleware"
	"vetblood/internal/transport/http/shared"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
)

// HandlerService is the surface the HTTP layer needs from the user service.
type HandlerService interface {
	Register(ctx context.Context, tgID domain.TelegramID, req RegisterRequest) (*User, error)
	Profile(ctx context.Context, id domain.UserID) (*User, error)
	UpdateProfile(ctx context.Context, id domain.UserID, req UpdateRequest) (*User, error)
	DeleteProfile(ctx context.Context, id domain.UserID) error
}

type Handler struct {
	svc    HandlerService
	logger *slog.Logger
}

func NewHandler(svc HandlerService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/users/register", h.handleRegister)
	r.Get("/users/profile", h.handleProfile)
	r.Put("/users/profile", h.handleUpdateProfile)
	r.Delete("/users/profile", h.handleDeleteProfile)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	var req RegisterRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	u, err := h.svc.Register(ctx, ident.TelegramID, req)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "registration failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	u, err := h.svc.Profile(ctx, ident.UserID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req UpdateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	u, err := h.svc.UpdateProfile(ctx, ident.UserID, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteProfile(ctx, ident.UserID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
