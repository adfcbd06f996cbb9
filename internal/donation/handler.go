package donation

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vetblood/internal/transport/http/shared"
	"vetblood/pkg/domain"
)

type HandlerService interface {
	Plan(ctx context.Context, actorID domain.UserID, req PlanRequest) (*Donation, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]Donation, error)
	SetStatus(ctx context.Context, actorID domain.UserID, id domain.DonationID, status string) (*Donation, error)
	Delete(ctx context.Context, actorID domain.UserID, id domain.DonationID) error
}

type Handler struct {
	svc    HandlerService
	logger *slog.Logger
}

func NewHandler(svc HandlerService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/donations/plan", h.handlePlan)
	r.Get("/donations", h.handleList)
	r.Put("/donations/{id}/status", h.handleStatus)
	r.Delete("/donations/{id}", h.handleDelete)
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req PlanRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	d, err := h.svc.Plan(ctx, ident.UserID, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	donations, err := h.svc.ListByOwner(ctx, ident.UserID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, donations)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseDonationID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req StatusRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	d, err := h.svc.SetStatus(ctx, ident.UserID, id, req.Status)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseDonationID(chi.URLParam(r, "id"))
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
