package strata

import (
	"context"
	"errors"
	"net/http"
)

// Kind identifies which Response variant is active.
type Kind uint8

const (
	// KindMaterialized holds a finite, fully built body.
	KindMaterialized Kind = iota
	// KindStreaming holds a lazy chunk sequence of unknown length.
	KindStreaming
	// KindDeferred holds a template identifier plus context data and still
	// needs the single render step before content exists.
	KindDeferred
)

// ErrAlreadyRendered is returned by Render when the deferred-to-materialized
// transition was already performed: it happens at most once per response.
var ErrAlreadyRendered = errors.New("strata: response already rendered")

// Response is the pipeline's response value: exactly one of the three
// variants is active at any time. A deferred response transitions to a
// materialized one at most once, via Render, which the dispatcher performs
// itself right after the template-response hooks finish.
//
// Like Request, a Response is owned by a single chain traversal and its
// mutators are not safe for concurrent use.
type Response struct {
	StatusCode int
	Header     http.Header

	kind     Kind
	body     []byte
	stream   Stream
	engine   TemplateEngine
	template string
	data     map[string]any
	rendered bool
}

// New builds a materialized response.
func New(status int, body []byte) *Response {
	return &Response{
		StatusCode: status,
		Header:     make(http.Header),
		kind:       KindMaterialized,
		body:       body,
	}
}

// NewStreaming builds a streaming response around a lazy chunk sequence.
func NewStreaming(status int, s Stream) *Response {
	return &Response{
		StatusCode: status,
		Header:     make(http.Header),
		kind:       KindStreaming,
		stream:     s,
	}
}

// NewTemplate builds a deferred-render response: the template is rendered by
// the engine with the given context data, but only after the
// template-response hooks have had their pass. Hooks may add keys to data
// until then.
func NewTemplate(engine TemplateEngine, status int, template string, data map[string]any) *Response {
	if data == nil {
		data = make(map[string]any)
	}
	return &Response{
		StatusCode: status,
		Header:     make(http.Header),
		kind:       KindDeferred,
		engine:     engine,
		template:   template,
		data:       data,
	}
}

// Kind reports the active variant.
func (r *Response) Kind() Kind { return r.kind }

// Deferred reports whether the response still needs its render step.
func (r *Response) Deferred() bool { return r.kind == KindDeferred }

// Body returns the materialized content; nil for other variants.
func (r *Response) Body() []byte { return r.body }

// SetBody replaces the materialized content. Calling it on a non-materialized
// response switches the variant, dropping any stream or pending template.
func (r *Response) SetBody(body []byte) {
	r.kind = KindMaterialized
	r.body = body
	r.stream = nil
}

// Stream returns the lazy chunk sequence; nil for other variants.
func (r *Response) Stream() Stream { return r.stream }

// SetStream replaces the chunk sequence. Transforming hooks use this with
// Stream.Map to wrap the original sequence lazily rather than draining it.
func (r *Response) SetStream(s Stream) {
	r.kind = KindStreaming
	r.stream = s
	r.body = nil
}

// TemplateName returns the pending template identifier; "" once rendered or
// for other variants.
func (r *Response) TemplateName() string {
	if r.kind != KindDeferred {
		return ""
	}
	return r.template
}

// Data returns the template context of a deferred response for
// template-response hooks to enrich; nil for other variants.
func (r *Response) Data() map[string]any {
	if r.kind != KindDeferred {
		return nil
	}
	return r.data
}

// Render performs the single deferred-to-materialized transition. The
// dispatcher calls it exactly once, after the template-response pass; a
// second call returns ErrAlreadyRendered.
func (r *Response) Render(ctx context.Context) error {
	if r.rendered {
		return ErrAlreadyRendered
	}
	if r.kind != KindDeferred {
		return errors.New("strata: response is not deferred")
	}
	body, err := r.engine.Render(ctx, r.template, r.data)
	if err != nil {
		return err
	}
	r.kind = KindMaterialized
	r.body = body
	r.rendered = true
	if r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "text/html; charset=utf-8")
	}
	return nil
}
