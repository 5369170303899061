// Package requestid tags every request with a unique identifier, reusing an
// inbound one when the client already supplied it.
package requestid

import (
	"github.com/google/uuid"

	"github.com/strata-go/strata"
)

// ValueKey is the request extension slot holding the identifier.
const ValueKey = "request_id"

// DefaultHeader is the header carrying the identifier in and out.
const DefaultHeader = "X-Request-ID"

// Middleware attaches a request ID on the way in and echoes it on the way
// out. Stateless: the ID lives on the request, never on the instance.
type Middleware struct {
	header string
}

// Option configures New.
type Option func(*Middleware)

// WithHeader changes the header the identifier travels in.
func WithHeader(header string) Option {
	return func(m *Middleware) {
		if header != "" {
			m.header = header
		}
	}
}

// New builds the middleware.
func New(opts ...Option) *Middleware {
	m := &Middleware{header: DefaultHeader}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Factory adapts New for a middleware registry.
func Factory() (strata.Unit, error) {
	return New(), nil
}

func (m *Middleware) ProcessRequest(req *strata.Request) (*strata.Response, error) {
	id := req.Header.Get(m.header)
	if id == "" {
		id = uuid.NewString()
	}
	req.Set(ValueKey, id)
	return nil, nil
}

func (m *Middleware) ProcessResponse(req *strata.Request, resp *strata.Response) (*strata.Response, error) {
	if id := req.StringValue(ValueKey); id != "" {
		resp.Header.Set(m.header, id)
	}
	return resp, nil
}

// FromRequest returns the identifier attached to the request, or "".
func FromRequest(req *strata.Request) string {
	return req.StringValue(ValueKey)
}
