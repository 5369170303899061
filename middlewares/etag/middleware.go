// Package etag computes a strong entity tag over materialized bodies and
// answers conditional requests with 304. Streaming bodies are left alone:
// hashing them would mean draining an unbounded sequence.
package etag

import (
	"encoding/hex"
	"net/http"

	"golang.org/x/crypto/blake2b"

	"github.com/strata-go/strata"
)

// Middleware sets the ETag in the response hook.
type Middleware struct{}

// New builds the middleware.
func New() *Middleware {
	return &Middleware{}
}

// Factory adapts New for a middleware registry.
func Factory() (strata.Unit, error) {
	return New(), nil
}

func (m *Middleware) ProcessResponse(req *strata.Request, resp *strata.Response) (*strata.Response, error) {
	if resp.Kind() != strata.KindMaterialized || resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return resp, nil
	}
	if resp.Header.Get("ETag") != "" {
		return resp, nil
	}

	sum := blake2b.Sum256(resp.Body())
	tag := `"` + hex.EncodeToString(sum[:16]) + `"`
	resp.Header.Set("ETag", tag)

	if req.Header.Get("If-None-Match") == tag {
		notModified := strata.New(http.StatusNotModified, nil)
		notModified.Header = resp.Header.Clone()
		notModified.Header.Del("Content-Length")
		return notModified, nil
	}
	return resp, nil
}
