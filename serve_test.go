package strata

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerServesMaterializedResponse(t *testing.T) {
	var trace []string
	a := &testUnit{name: "A", trace: &trace}
	chain := buildChain(t, a)

	view := NewView("hello", func(req *Request, args []any, kwargs map[string]any) (*Response, error) {
		resp := New(http.StatusCreated, []byte("hello "+req.Path))
		resp.Header.Set("Content-Type", "text/plain")
		return resp, nil
	})
	handler := NewHandler(chain, view)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/world", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "hello /world", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestHandlerFlushesStreamingResponse(t *testing.T) {
	chain := buildChain(t)
	view := NewView("stream", func(req *Request, args []any, kwargs map[string]any) (*Response, error) {
		return NewStreaming(http.StatusOK, FromChunks([]byte("one"), []byte("two"), []byte("three"))), nil
	})
	handler := NewHandler(chain, view)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "onetwothree", rec.Body.String())
	assert.True(t, rec.Flushed)
}

func TestHandlerConvertsFaultsToGeneric500(t *testing.T) {
	chain := buildChain(t)
	view := NewView("boom", func(req *Request, args []any, kwargs map[string]any) (*Response, error) {
		return nil, errors.New("boom")
	})
	handler := NewHandler(chain, view)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// The unresolved view error never leaks details to the client.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestHandlerDefaultsStatusToOK(t *testing.T) {
	chain := buildChain(t)
	view := NewView("zero", func(req *Request, args []any, kwargs map[string]any) (*Response, error) {
		return New(0, []byte("ok")), nil
	})
	rec := httptest.NewRecorder()
	NewHandler(chain, view).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFromHTTPCarriesTransportFields(t *testing.T) {
	httpReq := httptest.NewRequest(http.MethodPost, "https://example.com/path?q=1", nil)
	httpReq.Header.Set("X-Token", "abc")
	req := FromHTTP(httpReq)

	require.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/path", req.Path)
	assert.Equal(t, "example.com", req.Host)
	assert.Equal(t, "abc", req.Header.Get("X-Token"))
	assert.True(t, req.TLS)
}
