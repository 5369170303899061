// Package casbin enforces access policies over the authenticated principal,
// request path and method. Denied requests short-circuit with 403.
package casbin

import (
	"fmt"

	"github.com/casbin/casbin/v2"

	"github.com/strata-go/strata"
	"github.com/strata-go/strata/internal/errs"
	authjwt "github.com/strata-go/strata/middlewares/auth/jwt"
)

// SubjectFunc derives the policy subject from a request.
type SubjectFunc func(req *strata.Request) string

// PrincipalSubject uses the subject attached by the jwt middleware, falling
// back to "anonymous".
func PrincipalSubject(req *strata.Request) string {
	if sub := authjwt.Principal(req); sub != "" {
		return sub
	}
	return "anonymous"
}

// Middleware checks each request against the enforcer in the request hook.
type Middleware struct {
	enforcer  casbin.IEnforcer
	subjectFn SubjectFunc
}

// Option configures New.
type Option func(*Middleware)

// WithSubjectFunc overrides the default PrincipalSubject.
func WithSubjectFunc(fn SubjectFunc) Option {
	return func(m *Middleware) {
		if fn != nil {
			m.subjectFn = fn
		}
	}
}

// New builds the middleware around an enforcer.
func New(enforcer casbin.IEnforcer, opts ...Option) (*Middleware, error) {
	if enforcer == nil {
		return nil, fmt.Errorf("casbin: nil enforcer")
	}
	m := &Middleware{enforcer: enforcer, subjectFn: PrincipalSubject}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Middleware) ProcessRequest(req *strata.Request) (*strata.Response, error) {
	allowed, err := m.enforcer.Enforce(m.subjectFn(req), req.Path, req.Method)
	if err != nil {
		return nil, fmt.Errorf("casbin: enforcing policy: %w", err)
	}
	if !allowed {
		apiErr := errs.NewPermissionError("access denied")
		resp := strata.New(apiErr.Code, apiErr.ToJSON())
		resp.Header.Set("Content-Type", "application/json")
		return resp, nil
	}
	return nil, nil
}
