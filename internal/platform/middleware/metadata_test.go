package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMetadataPopulatesContext(t *testing.T) {
	var gotIP, gotUA string
	handler := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = GetClientIP(r.Context())
		gotUA = GetUserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", "vetblood-bot/1.0")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "203.0.113.7", gotIP)
	assert.Equal(t, "vetblood-bot/1.0", gotUA)
}

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "forwarded chain takes first hop",
			remoteAddr: "10.0.0.1:4444",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.1"},
			want:       "198.51.100.2",
		},
		{
			name:       "real ip header",
			remoteAddr: "10.0.0.1:4444",
			headers:    map[string]string{"X-Real-IP": "198.51.100.3"},
			want:       "198.51.100.3",
		},
		{
			name:       "remote addr strips port",
			remoteAddr: "192.0.2.9:5555",
			want:       "192.0.2.9",
		},
		{
			name:       "ipv6 remote addr strips brackets",
			remoteAddr: "[::1]:5555",
			want:       "::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(req))
		})
	}
}
