package secureheader

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-go/strata"
)

func TestDefaultHeaders(t *testing.T) {
	m := New(DefaultOptions())
	req := strata.NewRequest(http.MethodGet, "/")
	resp := strata.New(http.StatusOK, nil)

	out, err := m.ProcessResponse(req, resp)
	require.NoError(t, err)

	assert.Equal(t, "1; mode=block", out.Header.Get("X-XSS-Protection"))
	assert.Equal(t, "nosniff", out.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", out.Header.Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", out.Header.Get("Referrer-Policy"))
	assert.Equal(t, "same-origin", out.Header.Get("Cross-Origin-Opener-Policy"))
	assert.Equal(t, "same-origin", out.Header.Get("Cross-Origin-Resource-Policy"))
}

func TestHSTSOnlyOverTLS(t *testing.T) {
	m := New(DefaultOptions())

	plain := strata.NewRequest(http.MethodGet, "/")
	resp, err := m.ProcessResponse(plain, strata.New(http.StatusOK, nil))
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Strict-Transport-Security"))

	secure := strata.NewRequest(http.MethodGet, "/")
	secure.TLS = true
	resp, err = m.ProcessResponse(secure, strata.New(http.StatusOK, nil))
	require.NoError(t, err)
	assert.Equal(t, "max-age=31536000; includeSubDomains", resp.Header.Get("Strict-Transport-Security"))
}

func TestEmptyValuesSuppressHeaders(t *testing.T) {
	m := New(Options{ContentSecurityPolicy: "default-src 'self'"})
	req := strata.NewRequest(http.MethodGet, "/")

	resp, err := m.ProcessResponse(req, strata.New(http.StatusOK, nil))
	require.NoError(t, err)

	assert.Equal(t, "default-src 'self'", resp.Header.Get("Content-Security-Policy"))
	assert.Empty(t, resp.Header.Get("X-Frame-Options"))
	assert.Empty(t, resp.Header.Get("X-XSS-Protection"))
}
