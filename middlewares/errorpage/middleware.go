// Package errorpage resolves view errors into a rendered error page instead
// of letting them escape the pipeline as faults.
package errorpage

import (
	"net/http"

	"github.com/strata-go/strata"
)

// Middleware turns an unresolved view error into a deferred-render response,
// which then flows through the normal template-response pass and render
// step like any other template response.
type Middleware struct {
	engine   strata.TemplateEngine
	template string
	status   int
}

// Option configures New.
type Option func(*Middleware)

// WithStatus overrides the 500 default.
func WithStatus(status int) Option {
	return func(m *Middleware) {
		if status != 0 {
			m.status = status
		}
	}
}

// New builds the middleware rendering template on view errors.
func New(engine strata.TemplateEngine, template string, opts ...Option) *Middleware {
	m := &Middleware{
		engine:   engine,
		template: template,
		status:   http.StatusInternalServerError,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Middleware) ProcessException(req *strata.Request, viewErr error) *strata.Response {
	return strata.NewTemplate(m.engine, m.status, m.template, map[string]any{
		"error": viewErr.Error(),
		"path":  req.Path,
	})
}
