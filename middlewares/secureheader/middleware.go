// Package secureheader injects browser security headers (HSTS, XSS, frame
// and content-type protections) into every response.
package secureheader

import (
	"strconv"

	"github.com/strata-go/strata"
)

// Options holds the header values; empty values suppress the header.
type Options struct {
	XSSProtection             string
	ContentTypeNosniff        string
	XFrameOptions             string
	HSTSMaxAge                int
	HSTSExcludeSubdomains     bool
	ContentSecurityPolicy     string
	ReferrerPolicy            string
	CrossOriginOpenerPolicy   string
	CrossOriginResourcePolicy string
}

// DefaultOptions returns a conservative baseline.
func DefaultOptions() Options {
	return Options{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "SAMEORIGIN",
		HSTSMaxAge:                31536000,
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
	}
}

// Middleware sets the configured headers in the response hook, which runs
// for every response regardless of how it was produced.
type Middleware struct {
	options Options
}

// New builds the middleware with the given options.
func New(options Options) *Middleware {
	return &Middleware{options: options}
}

// Factory adapts the default options for a middleware registry.
func Factory() (strata.Unit, error) {
	return New(DefaultOptions()), nil
}

func (m *Middleware) ProcessResponse(req *strata.Request, resp *strata.Response) (*strata.Response, error) {
	o := m.options
	if o.XSSProtection != "" {
		resp.Header.Set("X-XSS-Protection", o.XSSProtection)
	}
	if o.ContentTypeNosniff != "" {
		resp.Header.Set("X-Content-Type-Options", o.ContentTypeNosniff)
	}
	if o.XFrameOptions != "" {
		resp.Header.Set("X-Frame-Options", o.XFrameOptions)
	}
	// HSTS only makes sense over TLS.
	if o.HSTSMaxAge > 0 && req.TLS {
		value := "max-age=" + strconv.Itoa(o.HSTSMaxAge)
		if !o.HSTSExcludeSubdomains {
			value += "; includeSubDomains"
		}
		resp.Header.Set("Strict-Transport-Security", value)
	}
	if o.ContentSecurityPolicy != "" {
		resp.Header.Set("Content-Security-Policy", o.ContentSecurityPolicy)
	}
	if o.ReferrerPolicy != "" {
		resp.Header.Set("Referrer-Policy", o.ReferrerPolicy)
	}
	if o.CrossOriginOpenerPolicy != "" {
		resp.Header.Set("Cross-Origin-Opener-Policy", o.CrossOriginOpenerPolicy)
	}
	if o.CrossOriginResourcePolicy != "" {
		resp.Header.Set("Cross-Origin-Resource-Policy", o.CrossOriginResourcePolicy)
	}
	return resp, nil
}
