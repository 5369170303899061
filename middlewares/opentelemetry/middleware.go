// Package opentelemetry traces each request as a span: opened in the
// request hook, enriched and closed in the response hook, with view errors
// recorded by the exception hook.
package opentelemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/strata-go/strata"
)

const instrumentationName = "github.com/strata-go/strata/middlewares/opentelemetry"

const spanKey = "otel_span"

// MiddlewareBuilder holds the tracer used for request spans.
type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

// Build produces the middleware unit, defaulting to the global tracer
// provider when none was set.
func (b *MiddlewareBuilder) Build() *Middleware {
	tracer := b.Tracer
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return &Middleware{tracer: tracer}
}

// Middleware carries only the tracer; the per-request span travels on the
// request's extension slots.
type Middleware struct {
	tracer trace.Tracer
}

func (m *Middleware) ProcessRequest(req *strata.Request) (*strata.Response, error) {
	ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
	ctx, span := m.tracer.Start(ctx, req.Method+" "+req.Path)
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.target", req.Path),
		attribute.String("http.host", req.Host),
	)
	req.WithContext(ctx)
	req.Set(spanKey, span)
	return nil, nil
}

func (m *Middleware) ProcessException(req *strata.Request, viewErr error) *strata.Response {
	if span, ok := req.Get(spanKey); ok {
		s := span.(trace.Span)
		s.RecordError(viewErr)
		s.SetStatus(codes.Error, viewErr.Error())
	}
	// Never resolves the error itself; recording only.
	return nil
}

func (m *Middleware) ProcessResponse(req *strata.Request, resp *strata.Response) (*strata.Response, error) {
	if span, ok := req.Get(spanKey); ok {
		s := span.(trace.Span)
		s.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		s.End()
	}
	return resp, nil
}
