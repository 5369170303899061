package strata

import (
	"context"
	"io"
	"net"
	"net/http"
)

// Request is the pipeline's view of an incoming request. The transport
// fields are fixed once the value is built; middleware communicate with each
// other and with the view through the extension slots (Set/Get), which are
// additive: a slot, once attached, is never removed downstream.
//
// A Request belongs to exactly one chain traversal. Hooks run sequentially
// within that traversal, so the slots need no locking; sharing a Request
// across goroutines is not supported.
type Request struct {
	Method     string
	Path       string
	Host       string
	RemoteAddr string
	Header     http.Header
	Body       io.Reader
	TLS        bool

	ctx    context.Context
	values map[string]any
}

// NewRequest builds a bare request, mostly useful in tests and non-HTTP
// transports.
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
		ctx:    context.Background(),
	}
}

// FromHTTP adapts a net/http request for the pipeline.
func FromHTTP(r *http.Request) *Request {
	return &Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		Host:       r.Host,
		RemoteAddr: r.RemoteAddr,
		Header:     r.Header,
		Body:       r.Body,
		TLS:        r.TLS != nil,
		ctx:        r.Context(),
	}
}

// Context returns the request's context, never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext replaces the request's context in place. Unlike net/http the
// request is not copied: the pipeline owns a single Request per traversal.
func (r *Request) WithContext(ctx context.Context) {
	if ctx != nil {
		r.ctx = ctx
	}
}

// Set attaches a named extension slot to the request.
func (r *Request) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any, 4)
	}
	r.values[key] = value
}

// Get reports the slot value and whether it was ever attached.
func (r *Request) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the slot value, or nil when absent.
func (r *Request) Value(key string) any {
	return r.values[key]
}

// StringValue returns a string slot, or "" when absent or not a string.
func (r *Request) StringValue(key string) string {
	s, _ := r.values[key].(string)
	return s
}

// Cookie returns the named cookie from the request headers.
func (r *Request) Cookie(name string) (*http.Cookie, error) {
	return (&http.Request{Header: r.Header}).Cookie(name)
}

// ClientIP returns the remote address without the port, honoring
// X-Forwarded-For when present.
func (r *Request) ClientIP() string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
