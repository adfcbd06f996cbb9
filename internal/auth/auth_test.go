package auth

import (
	"context"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetblood/internal/platform/middleware"
	"vetblood/pkg/domain"
	dErrors "vetblood/pkg/domain-errors"
	"vetblood/pkg/platform/sentinel"
)

const testBotToken = "12345:TEST_TOKEN"

func signedInitData(t *testing.T, telegramID int64) string {
	t.Helper()
	values := url.Values{}
	values.Set("user", `{"id":`+strconv.FormatInt(telegramID, 10)+`,"first_name":"Ada","username":"ada"}`)
	values.Set("auth_date", "1700000000")
	values.Set("hash", SignInitData(values, testBotToken))
	return values.Encode()
}

func TestVerifyInitData(t *testing.T) {
	t.Run("accepts correctly signed payload", func(t *testing.T) {
		parsed, err := VerifyInitData(signedInitData(t, 42), testBotToken)
		require.NoError(t, err)
		assert.Equal(t, domain.TelegramID(42), parsed.TelegramID)
		assert.Equal(t, "Ada", parsed.FirstName)
		assert.Equal(t, int64(1700000000), parsed.AuthDate)
	})

	t.Run("malformed auth_date treated as absent", func(t *testing.T) {
		values := url.Values{}
		values.Set("user", `{"id":42,"first_name":"Ada"}`)
		values.Set("auth_date", "not-a-timestamp")
		values.Set("hash", SignInitData(values, testBotToken))

		parsed, err := VerifyInitData(values.Encode(), testBotToken)
		require.NoError(t, err)
		assert.Zero(t, parsed.AuthDate)
	})

	t.Run("rejects tampered payload", func(t *testing.T) {
		values := url.Values{}
		values.Set("user", `{"id":42,"first_name":"Ada"}`)
		values.Set("hash", SignInitData(values, testBotToken))
		values.Set("user", `{"id":43,"first_name":"Eve"}`) // tamper after signing

		_, err := VerifyInitData(values.Encode(), testBotToken)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects signature from a different bot token", func(t *testing.T) {
		values := url.Values{}
		values.Set("user", `{"id":42}`)
		values.Set("hash", SignInitData(values, "other:TOKEN"))

		_, err := VerifyInitData(values.Encode(), testBotToken)
		require.Error(t, err)
	})

	t.Run("rejects missing hash", func(t *testing.T) {
		_, err := VerifyInitData("user=%7B%22id%22%3A42%7D", testBotToken)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects payload without user id", func(t *testing.T) {
		values := url.Values{}
		values.Set("auth_date", "1700000000")
		values.Set("hash", SignInitData(values, testBotToken))
		_, err := VerifyInitData(values.Encode(), testBotToken)
		require.Error(t, err)
	})
}

func TestSessions(t *testing.T) {
	sessions := NewSessions("test-signing-key", time.Hour)

	t.Run("round trips identity claims", func(t *testing.T) {
		userID := domain.NewUserID()
		token, err := sessions.Mint(userID, domain.TelegramID(42), domain.RoleOwner)
		require.NoError(t, err)

		claims, err := sessions.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, int64(42), claims.TelegramID)
		assert.Equal(t, domain.RoleOwner, claims.Role)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewSessions("test-signing-key", -time.Minute)
		token, err := expired.Mint(domain.NewUserID(), domain.TelegramID(42), domain.RoleOwner)
		require.NoError(t, err)

		_, err = sessions.Validate(token)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects token signed with another key", func(t *testing.T) {
		other := NewSessions("other-key", time.Hour)
		token, err := other.Mint(domain.NewUserID(), domain.TelegramID(42), domain.RoleOwner)
		require.NoError(t, err)

		_, err = sessions.Validate(token)
		require.Error(t, err)
	})
}

type stubResolver struct {
	userID domain.UserID
	role   domain.UserRole
	err    error
}

func (r *stubResolver) ResolveTelegramID(context.Context, domain.TelegramID) (domain.UserID, domain.UserRole, error) {
	return r.userID, r.role, r.err
}

func TestService(t *testing.T) {
	sessions := NewSessions("test-signing-key", time.Hour)
	ctx := context.Background()

	t.Run("resolves registered user from init data", func(t *testing.T) {
		userID := domain.NewUserID()
		svc := NewService(testBotToken, sessions, &stubResolver{userID: userID, role: domain.RoleClinic})

		identity, err := svc.AuthenticateInitData(ctx, signedInitData(t, 42))
		require.NoError(t, err)
		assert.True(t, identity.Registered)
		assert.Equal(t, userID, identity.UserID)
		assert.Equal(t, domain.RoleClinic, identity.Role)
	})

	t.Run("unregistered telegram id yields unregistered identity", func(t *testing.T) {
		svc := NewService(testBotToken, sessions, &stubResolver{err: sentinel.ErrNotFound})

		identity, err := svc.AuthenticateInitData(ctx, signedInitData(t, 42))
		require.NoError(t, err)
		assert.False(t, identity.Registered)
		assert.Equal(t, domain.TelegramID(42), identity.TelegramID)
	})

	t.Run("mock token rejected when bypass disabled", func(t *testing.T) {
		svc := NewService(testBotToken, sessions, &stubResolver{err: sentinel.ErrNotFound})

		_, err := svc.AuthenticateInitData(ctx, MockInitDataToken)
		require.Error(t, err)
	})

	t.Run("mock token accepted when bypass enabled", func(t *testing.T) {
		userID := domain.NewUserID()
		svc := NewService(testBotToken, sessions, &stubResolver{userID: userID, role: domain.RoleOwner})
		svc.EnableMockAuth(domain.TelegramID(123456789))

		identity, err := svc.AuthenticateInitData(ctx, MockInitDataToken)
		require.NoError(t, err)
		assert.Equal(t, domain.TelegramID(123456789), identity.TelegramID)
	})

	t.Run("service token resolves acting user", func(t *testing.T) {
		userID := domain.NewUserID()
		svc := NewService(testBotToken, sessions, &stubResolver{userID: userID, role: domain.RoleOwner})
		svc.EnableServiceAuth("bot-secret")

		identity, err := svc.AuthenticateService(ctx, "bot-secret", 42)
		require.NoError(t, err)
		assert.Equal(t, userID, identity.UserID)
		assert.Equal(t, domain.TelegramID(42), identity.TelegramID)

		_, err = svc.AuthenticateService(ctx, "wrong", 42)
		require.Error(t, err)
	})

	t.Run("service token rejected when not configured", func(t *testing.T) {
		svc := NewService(testBotToken, sessions, &stubResolver{})

		_, err := svc.AuthenticateService(ctx, "", 42)
		require.Error(t, err)
	})

	t.Run("session token round trip", func(t *testing.T) {
		userID := domain.NewUserID()
		svc := NewService(testBotToken, sessions, &stubResolver{userID: userID, role: domain.RoleDonor})

		token, err := svc.MintSession(middleware.Identity{
			UserID:     userID,
			TelegramID: 42,
			Role:       domain.RoleDonor,
			Registered: true,
		})
		require.NoError(t, err)

		identity, err := svc.AuthenticateSession(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, identity.UserID)
	})
}
