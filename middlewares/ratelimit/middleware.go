// Package ratelimit rejects requests over a configured rate with 429. The
// stock limiter is a Redis-backed sliding window, so the limit holds across
// replicas; any Limiter implementation can be plugged in.
package ratelimit

import (
	"context"
	"strconv"
	"strings"

	"github.com/strata-go/strata"
	"github.com/strata-go/strata/internal/errs"
)

// Limiter reports whether the action identified by key is over its limit.
type Limiter interface {
	Limit(ctx context.Context, key string) (bool, error)
}

// KeyFunc derives the limit key from a request.
type KeyFunc func(req *strata.Request) string

// ClientIPKey buckets requests by client address.
func ClientIPKey(req *strata.Request) string {
	var b strings.Builder
	b.WriteString("ip-limiter:")
	b.WriteString(req.ClientIP())
	return b.String()
}

// MiddlewareBuilder configures the limiter middleware.
type MiddlewareBuilder struct {
	limiter       Limiter
	keyFn         KeyFunc
	retryAfterSec int
}

// InitMiddlewareBuilder returns a builder with ClientIPKey as the default
// key derivation.
func InitMiddlewareBuilder(limiter Limiter, retryAfterSec int) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		limiter:       limiter,
		keyFn:         ClientIPKey,
		retryAfterSec: retryAfterSec,
	}
}

// KeyFunc overrides the key derivation.
func (b *MiddlewareBuilder) KeyFunc(fn KeyFunc) *MiddlewareBuilder {
	if fn != nil {
		b.keyFn = fn
	}
	return b
}

// Build produces the middleware unit.
func (b *MiddlewareBuilder) Build() *Middleware {
	return &Middleware{
		limiter:       b.limiter,
		keyFn:         b.keyFn,
		retryAfterSec: b.retryAfterSec,
	}
}

// Middleware checks the limit in the request hook.
type Middleware struct {
	limiter       Limiter
	keyFn         KeyFunc
	retryAfterSec int
}

func (m *Middleware) ProcessRequest(req *strata.Request) (*strata.Response, error) {
	limited, err := m.limiter.Limit(req.Context(), m.keyFn(req))
	if err != nil {
		return nil, err
	}
	if !limited {
		return nil, nil
	}
	apiErr := errs.NewRateLimitError("too many requests")
	resp := strata.New(apiErr.Code, apiErr.ToJSON())
	resp.Header.Set("Content-Type", "application/json")
	if m.retryAfterSec > 0 {
		resp.Header.Set("Retry-After", strconv.Itoa(m.retryAfterSec))
	}
	return resp, nil
}
