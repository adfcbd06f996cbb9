package bloodstock

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vetblood/internal/transport/http/shared"
	"vetblood/pkg/domain"
)

type HandlerService interface {
	Create(ctx context.Context, actorID domain.UserID, req CreateRequest) (*Stock, error)
	List(ctx context.Context) ([]Stock, error)
	Update(ctx context.Context, actorID domain.UserID, id domain.StockID, req UpdateRequest) (*Stock, error)
	Delete(ctx context.Context, actorID domain.UserID, id domain.StockID) error
	Book(ctx context.Context, actorID domain.UserID, id domain.StockID) (*Stock, error)
}

type Handler struct {
	svc    HandlerService
	logger *slog.Logger
}

func NewHandler(svc HandlerService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/blood_stocks/create", h.handleCreate)
	r.Get("/blood_stocks", h.handleList)
	r.Put("/blood_stocks/{id}", h.handleUpdate)
	r.Delete("/blood_stocks/{id}", h.handleDelete)
	r.Post("/blood_stocks/book", h.handleBook)
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
	st, err := h.svc.Create(ctx, ident.UserID, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, st)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := shared.RegisteredIdentity(ctx); err != nil {
		shared.WriteError(w, err)
		return
	}
	stocks, err := h.svc.List(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, stocks)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseStockID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req UpdateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	st, err := h.svc.Update(ctx, ident.UserID, id, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseStockID(chi.URLParam(r, "id"))
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

func (h *Handler) handleBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, err := shared.RegisteredIdentity(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req BookRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	id, err := domain.ParseStockID(req.StockID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	st, err := h.svc.Book(ctx, ident.UserID, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, st)
}
