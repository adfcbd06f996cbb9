package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"vetblood/internal/platform/middleware"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	"vetblood/pkg/platform/sentinel"
)

// MockInitDataToken is the development sentinel accepted when mock auth is
// enabled: clients send it verbatim in the init-data header.
const MockInitDataToken = "mock-init-data"

// UserResolver looks up the registered user behind a Telegram identity.
// Implemented by the user store.
type UserResolver interface {
	ResolveTelegramID(ctx context.Context, telegramID domain.TelegramID) (domain.UserID, domain.UserRole, error)
}

// Service implements middleware.Authenticator: it verifies credentials and
// resolves them to an application identity. Stateless; one decision per call.
type Service struct {
	botToken string
	sessions *Sessions
	users    UserResolver

	serviceToken string

	mockAuth       bool
	mockTelegramID domain.TelegramID
}

func NewService(botToken string, sessions *Sessions, users UserResolver) *Service {
	return &Service{botToken: botToken, sessions: sessions, users: users}
}

// EnableServiceAuth accepts the shared token from trusted internal callers.
// The bot process uses it to act on behalf of the Telegram user it talks to.
func (s *Service) EnableServiceAuth(token string) {
	s.serviceToken = token
}

// AuthenticateService verifies the shared service token and resolves the
// acting Telegram user the same way init data would.
func (s *Service) AuthenticateService(ctx context.Context, token string, actingTelegramID int64) (middleware.Identity, error) {
	if s.serviceToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.serviceToken)) != 1 {
		return middleware.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "service auth rejected")
	}
	return s.resolve(ctx, domain.TelegramID(actingTelegramID))
}

// EnableMockAuth turns on the development bypass with a fixed identity.
func (s *Service) EnableMockAuth(telegramID domain.TelegramID) {
	s.mockAuth = true
	s.mockTelegramID = telegramID
}

// AuthenticateInitData verifies a signed init-data payload and resolves the
// caller. A payload that verifies but matches no user row yields an
// unregistered identity — only registration accepts that state.
func (s *Service) AuthenticateInitData(ctx context.Context, initData string) (middleware.Identity, error) {
	if s.mockAuth && subtle.ConstantTimeCompare([]byte(initData), []byte(MockInitDataToken)) == 1 {
		return s.resolve(ctx, s.mockTelegramID)
	}

	parsed, err := VerifyInitData(initData, s.botToken)
	if err != nil {
		return middleware.Identity{}, err
	}
	return s.resolve(ctx, parsed.TelegramID)
}

// AuthenticateSession validates a bearer session token.
func (s *Service) AuthenticateSession(ctx context.Context, token string) (middleware.Identity, error) {
	claims, err := s.sessions.Validate(token)
	if err != nil {
		return middleware.Identity{}, err
	}
	// Re-resolve so a deleted profile invalidates outstanding tokens.
	return s.resolve(ctx, domain.TelegramID(claims.TelegramID))
}

// MintSession issues a session token for an already-authenticated identity.
func (s *Service) MintSession(id middleware.Identity) (string, error) {
	return s.sessions.Mint(id.UserID, id.TelegramID, id.Role)
}

func (s *Service) resolve(ctx context.Context, telegramID domain.TelegramID) (middleware.Identity, error) {
	userID, role, err := s.users.ResolveTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return middleware.Identity{TelegramID: telegramID}, nil
		}
		return middleware.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not resolve user")
	}
	return middleware.Identity{
		UserID:     userID,
		TelegramID: telegramID,
		Role:       role,
		Registered: true,
	}, nil
}
