package strata

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestExtensionSlots(t *testing.T) {
	req := NewRequest(http.MethodGet, "/")

	_, ok := req.Get("principal")
	assert.False(t, ok)
	assert.Nil(t, req.Value("principal"))

	req.Set("principal", "ada")
	v, ok := req.Get("principal")
	require.True(t, ok)
	assert.Equal(t, "ada", v)
	assert.Equal(t, "ada", req.StringValue("principal"))

	// Slots are additive: later writers layer on, nothing is removed.
	req.Set("locale", "en-GB")
	assert.Equal(t, "ada", req.StringValue("principal"))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{name: "plain addr", remoteAddr: "10.0.0.1:1234", want: "10.0.0.1"},
		{name: "no port", remoteAddr: "10.0.0.1", want: "10.0.0.1"},
		{name: "ipv6", remoteAddr: "[::1]:8080", want: "::1"},
		{name: "forwarded wins", remoteAddr: "10.0.0.1:1234", forwarded: "203.0.113.7", want: "203.0.113.7"},
		{name: "first forwarded hop", remoteAddr: "10.0.0.1:1234", forwarded: "203.0.113.7,198.51.100.2", want: "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest(http.MethodGet, "/")
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, req.ClientIP())
		})
	}
}

func TestRequestCookie(t *testing.T) {
	req := NewRequest(http.MethodGet, "/")
	req.Header.Set("Cookie", "csrf_token=abc123; session=xyz")

	cookie, err := req.Cookie("csrf_token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", cookie.Value)

	_, err = req.Cookie("missing")
	assert.Error(t, err)
}
