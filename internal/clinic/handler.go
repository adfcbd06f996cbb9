package clinic

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vetblood/internal/transport/http/shared"
	"vetblood/pkg/domain"
)

type HandlerService interface {
	Create(ctx context.Context, ownerID domain.UserID, req CreateRequest) (*Clinic, error)
	List(ctx context.Context) ([]Clinic, error)
	Update(ctx context.Context, actorID domain.UserID, id domain.ClinicID, req UpdateRequest) (*Clinic, error)
	Delete(ctx context.Context, actorID domain.UserID, id domain.ClinicID) error
}

type Handler struct {
	svc    HandlerService
	logger *slog.Logger
}

func NewHandler(svc HandlerService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/vet_clinics/create", h.handleCreate)
	r.Get("/vet_clinics", h.handleList)
	r.Put("/vet_clinics/{id}", h.handleUpdate)
	r.Delete("/vet_clinics/{id}", h.handleDelete)
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
	c, err := h.svc.Create(ctx, ident.UserID, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := shared.RegisteredIdentity(ctx); err != nil {
		shared.WriteError(w, err)
		return
	}
	clinics, err := h.svc.List(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, clinics)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseClinicID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req UpdateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	c, err := h.svc.Update(ctx, ident.UserID, id, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseClinicID(chi.URLParam(r, "id"))
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
