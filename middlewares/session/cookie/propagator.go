// Package cookie propagates session identifiers in an HTTP cookie.
package cookie

import (
	"net/http"

	"github.com/strata-go/strata"
)

// DefaultCookieName carries the session id unless overridden.
const DefaultCookieName = "session_id"

// Option configures InitPropagator.
type Option func(p *Propagator)

// WithCookieName overrides the cookie name.
func WithCookieName(name string) Option {
	return func(p *Propagator) {
		if name != "" {
			p.cookieName = name
		}
	}
}

// WithCookieOption customizes every emitted cookie (Secure, Domain, ...)
// after the defaults are applied.
func WithCookieOption(fn func(cookie *http.Cookie)) Option {
	return func(p *Propagator) {
		if fn != nil {
			p.cookieOption = fn
		}
	}
}

// Propagator moves the session id through a cookie.
type Propagator struct {
	cookieName   string
	cookieOption func(cookie *http.Cookie)
}

// InitPropagator builds a propagator with HttpOnly, path-wide cookies.
func InitPropagator(opts ...Option) *Propagator {
	p := &Propagator{
		cookieName:   DefaultCookieName,
		cookieOption: func(cookie *http.Cookie) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Propagator) Inject(id string, resp *strata.Response) error {
	cookie := &http.Cookie{
		Name:     p.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	p.cookieOption(cookie)
	resp.Header.Add("Set-Cookie", cookie.String())
	return nil
}

func (p *Propagator) Extract(req *strata.Request) (string, error) {
	cookie, err := req.Cookie(p.cookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func (p *Propagator) Remove(resp *strata.Response) error {
	cookie := &http.Cookie{
		Name:   p.cookieName,
		Path:   "/",
		MaxAge: -1,
	}
	p.cookieOption(cookie)
	resp.Header.Add("Set-Cookie", cookie.String())
	return nil
}
