// Package shared holds the JSON helpers every resource handler uses, so the
// error envelope and decoding rules stay identical across the API surface.
package shared

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"vetblood/internal/platform/middleware"
	dErrors "vetblood/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the wire shape of every error the API returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError translates a domain error into the JSON error envelope. Uncoded
// errors become a generic 500 so internal details never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   string(code),
		Message: dErrors.MessageOf(err),
	})
}

// WriteJSON writes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RegisteredIdentity requires a verified identity backed by a user row.
// Verified-but-unregistered callers may only hit the registration endpoint.
func RegisteredIdentity(ctx context.Context) (middleware.Identity, error) {
	ident, ok := middleware.GetIdentity(ctx)
	if !ok {
		return middleware.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !ident.Registered {
		return middleware.Identity{}, dErrors.New(dErrors.CodeForbidden, "registration required")
	}
	return ident, nil
}

// Decode reads the request body into dst, rejecting oversized or malformed
// payloads with a coded validation error.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return dErrors.New(dErrors.CodeInvalidInput, "request body is empty")
		}
		return dErrors.New(dErrors.CodeInvalidInput, "invalid request body")
	}
	return nil
}
