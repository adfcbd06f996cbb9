package bloodsearch

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vetblood/internal/transport/http/shared"
	"vetblood/pkg/domain"
)

type HandlerService interface {
	Create(ctx context.Context, requesterID domain.UserID, req CreateRequest) (*Search, error)
	ListByRequester(ctx context.Context, requesterID domain.UserID) ([]Search, error)
	Update(ctx context.Context, actorID domain.UserID, id domain.SearchID, req UpdateRequest) (*Search, error)
	Delete(ctx context.Context, actorID domain.UserID, id domain.SearchID) error
}

type Handler struct {
	svc    HandlerService
	logger *slog.Logger
}

func NewHandler(svc HandlerService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/blood_searches/create", h.handleCreate)
	r.Get("/blood_searches", h.handleList)
	r.Put("/blood_searches/{id}", h.handleUpdate)
	r.Delete("/blood_searches/{id}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req CreateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	sr, err := h.svc.Create(ctx, ident.UserID, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, sr)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	searches, err := h.svc.ListByRequester(ctx, ident.UserID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, searches)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseSearchID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req UpdateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	sr, err := h.svc.Update(ctx, ident.UserID, id, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sr)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseSearchID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.Delete(ctx, ident.UserID, id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
