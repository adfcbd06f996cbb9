package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

// InitDataHeader carries the signed Telegram mini-app payload.
const InitDataHeader = "X-Telegram-Init-Data"

// ServiceTokenHeader authenticates trusted internal callers (the bot
// process). ActingIDHeader names the Telegram user the call acts for.
const (
	ServiceTokenHeader = "X-Service-Token"
	ActingIDHeader     = "X-Acting-Telegram-ID"
)

// Authenticator verifies caller credentials. Implemented by internal/auth.
type Authenticator interface {
	// AuthenticateInitData verifies a signed Telegram init-data payload and
	// resolves the caller's identity.
	AuthenticateInitData(ctx context.Context, initData string) (Identity, error)
	// AuthenticateSession validates a bearer session token minted by
	// POST /api/auth/session.
	AuthenticateSession(ctx context.Context, token string) (Identity, error)
	// AuthenticateService verifies the shared service token and resolves the
	// acting Telegram user. Used by the bot process.
	AuthenticateService(ctx context.Context, token string, actingTelegramID int64) (Identity, error)
}

// RequireAuth authenticates every request: a Bearer session token takes
// precedence, otherwise the Telegram init-data header is verified. Requests
// with neither, or with invalid credentials, get 401 before touching any data.
func RequireAuth(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				identity, err := authn.AuthenticateSession(ctx, token)
				if err != nil {
					logger.WarnContext(ctx, "unauthorized: invalid session token",
						"request_id", GetRequestID(ctx),
						"error", err,
					)
					writeUnauthorized(w, "invalid or expired session token")
					return
				}
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
				return
			}

			if token := r.Header.Get(ServiceTokenHeader); token != "" {
				acting, err := strconv.ParseInt(r.Header.Get(ActingIDHeader), 10, 64)
				if err != nil {
					writeUnauthorized(w, "missing or malformed acting Telegram ID")
					return
				}
				identity, err := authn.AuthenticateService(ctx, token, acting)
				if err != nil {
					logger.WarnContext(ctx, "unauthorized: invalid service token",
						"request_id", GetRequestID(ctx),
						"error", err,
					)
					writeUnauthorized(w, "invalid service token")
					return
				}
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
				return
			}

			if initData := r.Header.Get(InitDataHeader); initData != "" {
				identity, err := authn.AuthenticateInitData(ctx, initData)
				if err != nil {
					logger.WarnContext(ctx, "unauthorized: invalid init data",
						"request_id", GetRequestID(ctx),
						"error", err,
					)
					writeUnauthorized(w, "invalid Telegram authorization data")
					return
				}
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
				return
			}

			logger.WarnContext(ctx, "unauthorized: missing credentials",
				"request_id", GetRequestID(ctx),
			)
			writeUnauthorized(w, "Telegram authorization data required")
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}
