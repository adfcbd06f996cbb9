package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "vetblood/pkg/domain-errors"
	"vetblood/pkg/domain"
)

// SessionClaims are embedded in the session tokens the mini-app exchanges
// its init data for, so repeat requests skip the HMAC verification round.
type SessionClaims struct {
	UserID     string          `json:"user_id,omitempty"`
	TelegramID int64           `json:"telegram_id"`
	Role       domain.UserRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Sessions mints and validates HS256 session tokens.
type Sessions struct {
	signingKey []byte
	ttl        time.Duration
}

func NewSessions(signingKey string, ttl time.Duration) *Sessions {
	return &Sessions{signingKey: []byte(signingKey), ttl: ttl}
}

// Mint issues a session token for a verified identity.
func (s *Sessions) Mint(userID domain.UserID, telegramID domain.TelegramID, role domain.UserRole) (string, error) {
	claims := SessionClaims{
		TelegramID: int64(telegramID),
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "vetblood",
			ID:        uuid.NewString(),
		},
	}
	if !userID.IsNil() {
		claims.UserID = userID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// Validate parses and verifies a session token.
func (s *Sessions) Validate(tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session token")
	}
	if claims.TelegramID == 0 {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session token missing identity")
	}
	return claims, nil
}
