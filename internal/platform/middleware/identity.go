package middleware

import (
	"context"

	"vetblood/pkg/domain"
)

// Identity is the authenticated caller attached to every request context.
// Registered is false when the Telegram payload verified but no user row
// exists yet — only the registration endpoint accepts that state.
type Identity struct {
	UserID     domain.UserID
	TelegramID domain.TelegramID
	Role       domain.UserRole
	Registered bool
}

type contextKeyIdentity struct{}

// WithIdentity injects an identity into a context. Exposed for service and
// handler tests that bypass the HTTP middleware chain.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity{}, id)
}

// GetIdentity retrieves the authenticated identity from the context.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKeyIdentity{}).(Identity)
	return id, ok
}
