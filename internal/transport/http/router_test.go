package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetblood/internal/audit"
	"vetblood/internal/auth"
	"vetblood/internal/notify"
	"vetblood/internal/platform/metrics"
	"vetblood/internal/platform/middleware"
	"vetblood/internal/user"
	txcontext "vetblood/pkg/platform/tx"
)

const testBotToken = "123456:TEST-TOKEN"

func newTestRouter(t *testing.T) (http.Handler, *user.Service, *auth.Service) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	m := metrics.New(prometheus.NewRegistry())

	users := user.NewService(user.NewInMemoryStore(),
		audit.NewPublisher(audit.NewInMemoryStore(), logger),
		notify.NewInMemoryOutbox(), txcontext.NopRunner{}, m)

	authSvc := auth.NewService(testBotToken, auth.NewSessions("test-signing-key", time.Hour), users)
	authSvc.EnableMockAuth(777)

	router := NewRouter(Config{
		Logger:    logger,
		Metrics:   m,
		Auth:      authSvc,
		Resources: []ResourceHandler{user.NewHandler(users, logger)},
	})
	return router, users, authSvc
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	router, _, _ := newTestRouter(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/users/register"},
		{http.MethodGet, "/api/users/profile"},
		{http.MethodPost, "/api/auth/session"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.path)
	}

	// A garbage init-data header is also rejected.
	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set(middleware.InitDataHeader, "tampered=1&hash=deadbeef")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthOpenWithoutAuth(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterThenSessionRoundTrip(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body := `{"full_name":"Ivan Petrov","role":"owner","consent_pd":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
	req.Header.Set(middleware.InitDataHeader, auth.MockInitDataToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// The ID on the wire is a UUID string a client can feed back into
	// /{id} paths, not uuid.UUID's underlying byte array.
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	_, err := uuid.Parse(created.ID)
	require.NoError(t, err, "id must be a UUID string, got body %s", rec.Body.String())

	// Mint a bearer session with the same init data.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/session", nil)
	req.Header.Set(middleware.InitDataHeader, auth.MockInitDataToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var minted struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &minted))
	require.NotEmpty(t, minted.Token)

	// The bearer token now authenticates the profile route.
	req = httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+minted.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	router, _, _ := newTestRouter(t)

	body := `{"full_name":"Ivan Petrov","role":"owner","consent_pd":true}`
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader(body))
		req.Header.Set(middleware.InitDataHeader, auth.MockInitDataToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, want, rec.Code, "attempt %d", i+1)
	}
}
