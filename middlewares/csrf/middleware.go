// Package csrf implements double-submit CSRF protection: a random token
// travels in a cookie, and unsafe requests must echo it in a header or form
// field. Mismatch short-circuits the pipeline with 403.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/strata-go/strata"
	"github.com/strata-go/strata/internal/errs"
)

const (
	defaultTokenLength = 32
	defaultCookieName  = "csrf_token"
	defaultHeaderName  = "X-CSRF-Token"

	issuedKey = "csrf_issued_token"
)

// Options configures the middleware.
type Options struct {
	TokenLength    int
	CookieName     string
	HeaderName     string
	CookieSecure   bool
	CookieHTTPOnly bool
	// IgnoreMethods are not validated; defaults to the safe methods.
	IgnoreMethods []string
}

// DefaultOptions returns the standard double-submit setup.
func DefaultOptions() Options {
	return Options{
		TokenLength:    defaultTokenLength,
		CookieName:     defaultCookieName,
		HeaderName:     defaultHeaderName,
		CookieSecure:   true,
		CookieHTTPOnly: true,
		IgnoreMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace},
	}
}

// Middleware validates unsafe requests in the request hook and issues the
// token cookie in the response hook when the client has none yet.
type Middleware struct {
	options Options
	ignore  map[string]struct{}
}

// New builds the middleware.
func New(options Options) *Middleware {
	if options.TokenLength <= 0 {
		options.TokenLength = defaultTokenLength
	}
	if options.CookieName == "" {
		options.CookieName = defaultCookieName
	}
	if options.HeaderName == "" {
		options.HeaderName = defaultHeaderName
	}
	ignore := make(map[string]struct{}, len(options.IgnoreMethods))
	for _, m := range options.IgnoreMethods {
		ignore[m] = struct{}{}
	}
	return &Middleware{options: options, ignore: ignore}
}

// Factory adapts the default options for a middleware registry.
func Factory() (strata.Unit, error) {
	return New(DefaultOptions()), nil
}

func (m *Middleware) ProcessRequest(req *strata.Request) (*strata.Response, error) {
	cookie, err := req.Cookie(m.options.CookieName)
	if err != nil || cookie.Value == "" {
		// No token yet: issue one on the way out. Safe methods proceed,
		// unsafe ones cannot possibly validate.
		token, genErr := generateToken(m.options.TokenLength)
		if genErr != nil {
			return nil, genErr
		}
		req.Set(issuedKey, token)
		if _, safe := m.ignore[req.Method]; safe {
			return nil, nil
		}
		return m.reject(), nil
	}

	if _, safe := m.ignore[req.Method]; safe {
		return nil, nil
	}

	presented := req.Header.Get(m.options.HeaderName)
	if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(cookie.Value)) != 1 {
		return m.reject(), nil
	}
	return nil, nil
}

func (m *Middleware) ProcessResponse(req *strata.Request, resp *strata.Response) (*strata.Response, error) {
	token := req.StringValue(issuedKey)
	if token == "" {
		return resp, nil
	}
	cookie := &http.Cookie{
		Name:     m.options.CookieName,
		Value:    token,
		Path:     "/",
		Secure:   m.options.CookieSecure,
		HttpOnly: m.options.CookieHTTPOnly,
		SameSite: http.SameSiteStrictMode,
	}
	resp.Header.Add("Set-Cookie", cookie.String())
	return resp, nil
}

func (m *Middleware) reject() *strata.Response {
	apiErr := errs.NewCSRFError("CSRF token missing or invalid")
	resp := strata.New(apiErr.Code, apiErr.ToJSON())
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func generateToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
