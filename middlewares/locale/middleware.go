// Package locale negotiates a locale per request: the Accept-Language
// header wins, then a GeoIP country lookup, then the configured default.
// The chosen locale is attached to the request and, via the
// template-response hook, injected into deferred template contexts.
package locale

import (
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"github.com/strata-go/strata"
)

// ValueKey is the request extension slot holding the negotiated locale.
const ValueKey = "locale"

// DataKey is the template context key the template-response hook fills in.
const DataKey = "locale"

// Options configures New.
type Options struct {
	// GeoIPPath locates a MaxMind country database. Empty disables GeoIP
	// lookup; with no default locale either, the unit opts out entirely.
	GeoIPPath string
	// Default is used when nothing else matches.
	Default string
	// ByCountry maps ISO country codes to locales for the GeoIP path.
	ByCountry map[string]string
}

// Middleware negotiates and propagates the locale. The GeoIP reader is
// safe for concurrent lookups; the negotiated locale is request-scoped.
type Middleware struct {
	db        *geoip2.Reader
	fallback  string
	byCountry map[string]string
}

// New builds the middleware. With neither a GeoIP database nor a default
// locale configured the unit has nothing to decide, so it opts out of the
// pipeline with strata.ErrNotUsed.
func New(options Options) (*Middleware, error) {
	if options.GeoIPPath == "" && options.Default == "" {
		return nil, strata.ErrNotUsed
	}
	m := &Middleware{fallback: options.Default, byCountry: options.ByCountry}
	if options.GeoIPPath != "" {
		db, err := geoip2.Open(options.GeoIPPath)
		if err != nil {
			return nil, err
		}
		m.db = db
	}
	return m, nil
}

// Close releases the GeoIP database.
func (m *Middleware) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *Middleware) ProcessRequest(req *strata.Request) (*strata.Response, error) {
	req.Set(ValueKey, m.negotiate(req))
	return nil, nil
}

// ProcessTemplateResponse injects the locale into the deferred template
// context so templates can localize without the view threading it through.
func (m *Middleware) ProcessTemplateResponse(req *strata.Request, resp *strata.Response) (*strata.Response, error) {
	if data := resp.Data(); data != nil {
		if _, exists := data[DataKey]; !exists {
			data[DataKey] = req.StringValue(ValueKey)
		}
	}
	return resp, nil
}

func (m *Middleware) negotiate(req *strata.Request) string {
	if header := req.Header.Get("Accept-Language"); header != "" {
		if tag := firstLanguageTag(header); tag != "" {
			return tag
		}
	}
	if m.db != nil {
		if ip := net.ParseIP(req.ClientIP()); ip != nil {
			if country, err := m.db.Country(ip); err == nil {
				if loc, ok := m.byCountry[country.Country.IsoCode]; ok {
					return loc
				}
			}
		}
	}
	return m.fallback
}

// firstLanguageTag extracts the first tag of an Accept-Language header,
// ignoring quality weights.
func firstLanguageTag(header string) string {
	tag := header
	if i := strings.IndexByte(tag, ','); i >= 0 {
		tag = tag[:i]
	}
	if i := strings.IndexByte(tag, ';'); i >= 0 {
		tag = tag[:i]
	}
	return strings.TrimSpace(tag)
}

// FromRequest returns the negotiated locale attached to the request, or "".
func FromRequest(req *strata.Request) string {
	return req.StringValue(ValueKey)
}
