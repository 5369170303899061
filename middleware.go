package strata

// Unit is a middleware unit: any value implementing at least one of the five
// optional hook interfaces below. Which hooks a unit implements is probed
// exactly once, when the unit is registered, and recorded as a capability
// set; nothing is re-probed per request.
//
// Unit instances are constructed once at startup and shared, read-only,
// across every concurrently executing request. A unit must therefore never
// keep per-request state in its own fields: anything scoped to a single
// request belongs on the Request (via Set/Get) or the Response, or in local
// variables of the executing hook. Violating this is a data race.
type Unit = any

// RequestProcessor is the request hook. It runs top-down, in registration
// order, before the view is resolved. Returning a non-nil Response
// short-circuits the pipeline: no later request hooks, no view hooks and no
// view run for this request, but every unit's response hook still does.
// Returning (nil, nil) lets the request continue.
type RequestProcessor interface {
	ProcessRequest(req *Request) (*Response, error)
}

// ViewProcessor is the view hook. It runs top-down after the request phase
// completed without a response, and receives the view about to be invoked
// (handler reference plus its arguments, the request excluded). The same
// short-circuit rule as the request hook applies; a non-nil Response also
// skips the view invocation itself.
type ViewProcessor interface {
	ProcessView(req *Request, view View) (*Response, error)
}

// ExceptionProcessor is the exception hook. When the view returns an error
// (or panics), exception hooks run bottom-up; the first one returning a
// non-nil Response resolves the error and stops the scan. Returning nil
// passes the error further out.
type ExceptionProcessor interface {
	ProcessException(req *Request, viewErr error) *Response
}

// TemplateProcessor is the template-response hook. It runs bottom-up, only
// while the current Response is still deferred (template not yet rendered),
// and must return a Response that is still deferred. After the pass the
// pipeline performs the single render step itself.
type TemplateProcessor interface {
	ProcessTemplateResponse(req *Request, resp *Response) (*Response, error)
}

// ResponseProcessor is the response hook. It runs bottom-up for every
// request that produced a Response by any path, including for units whose
// request hook never ran because an earlier unit short-circuited. It must
// return a non-nil Response (the same one or a replacement).
type ResponseProcessor interface {
	ProcessResponse(req *Request, resp *Response) (*Response, error)
}

// HandleFunc is the composed form of a pipeline: one call per request.
type HandleFunc func(req *Request) (*Response, error)

// capability records which hooks a unit implements.
type capability uint8

const (
	capRequest capability = 1 << iota
	capView
	capException
	capTemplate
	capResponse
)

func capabilitiesOf(u Unit) capability {
	var caps capability
	if _, ok := u.(RequestProcessor); ok {
		caps |= capRequest
	}
	if _, ok := u.(ViewProcessor); ok {
		caps |= capView
	}
	if _, ok := u.(ExceptionProcessor); ok {
		caps |= capException
	}
	if _, ok := u.(TemplateProcessor); ok {
		caps |= capTemplate
	}
	if _, ok := u.(ResponseProcessor); ok {
		caps |= capResponse
	}
	return caps
}
