// Package cache serves repeated GET responses from a TTL in-memory store.
// A hit short-circuits the pipeline in the request hook; misses are stored
// by the response hook on the way out.
package cache

import (
	"bytes"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/atomic"

	"github.com/strata-go/strata"
)

const (
	keySlot = "cache_key"
	hitSlot = "cache_hit"

	// HitHeader marks responses served from the cache.
	HitHeader = "X-Cache"
)

// KeyFunc derives the cache key from a request; returning "" skips caching
// for that request.
type KeyFunc func(req *strata.Request) string

// PathKey keys entries by request path alone.
func PathKey(req *strata.Request) string {
	return req.Path
}

// PathAndHeaderKey keys entries by path plus the named header values.
func PathAndHeaderKey(headers ...string) KeyFunc {
	return func(req *strata.Request) string {
		var b bytes.Buffer
		b.WriteString(req.Path)
		for _, h := range headers {
			b.WriteByte(':')
			b.WriteString(req.Header.Get(h))
		}
		return b.String()
	}
}

type cachedResponse struct {
	statusCode int
	header     http.Header
	body       []byte
}

// Middleware is the response cache. The store and counters are the only
// instance state and both are safe for concurrent use; everything
// request-scoped travels on the request's extension slots.
type Middleware struct {
	store *gocache.Cache
	keyFn KeyFunc

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures New.
type Option func(*Middleware)

// WithKeyFunc overrides the default PathKey.
func WithKeyFunc(fn KeyFunc) Option {
	return func(m *Middleware) {
		if fn != nil {
			m.keyFn = fn
		}
	}
}

// New builds a cache middleware with the given entry TTL. Cleanup of expired
// entries runs at twice the TTL.
func New(ttl time.Duration, opts ...Option) *Middleware {
	m := &Middleware{
		store: gocache.New(ttl, 2*ttl),
		keyFn: PathKey,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Middleware) ProcessRequest(req *strata.Request) (*strata.Response, error) {
	if req.Method != http.MethodGet {
		return nil, nil
	}
	key := m.keyFn(req)
	if key == "" {
		return nil, nil
	}
	req.Set(keySlot, key)

	value, ok := m.store.Get(key)
	if !ok {
		m.misses.Inc()
		return nil, nil
	}
	m.hits.Inc()
	req.Set(hitSlot, true)

	cached := value.(*cachedResponse)
	resp := strata.New(cached.statusCode, cached.body)
	for k, vs := range cached.header {
		for _, v := range vs {
			resp.Header.Add(k, v)
		}
	}
	resp.Header.Set(HitHeader, "HIT")
	return resp, nil
}

func (m *Middleware) ProcessResponse(req *strata.Request, resp *strata.Response) (*strata.Response, error) {
	key := req.StringValue(keySlot)
	if key == "" {
		return resp, nil
	}
	if hit, _ := req.Get(hitSlot); hit == true {
		return resp, nil
	}
	if resp.Kind() != strata.KindMaterialized || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	m.store.SetDefault(key, &cachedResponse{
		statusCode: resp.StatusCode,
		header:     resp.Header.Clone(),
		body:       bytes.Clone(resp.Body()),
	})
	return resp, nil
}

// Stats reports cache hits and misses since construction.
func (m *Middleware) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}

// Clear drops every cached entry.
func (m *Middleware) Clear() {
	m.store.Flush()
}
