package strata

import "fmt"

// Dispatch executes the chain for one request. The order contract:
//
//  1. Request hooks run top-down; the first non-nil Response short-circuits
//     the rest of the request phase, the view phase and the view itself.
//  2. View hooks run top-down with the same short-circuit rule.
//  3. The view runs; an error (or panic) from it is offered to the exception
//     hooks bottom-up, first resolver wins.
//  4. The response phase runs for every request that produced a Response by
//     any of the paths above: template-response hooks bottom-up while the
//     response is deferred, then the single render step, then response hooks
//     bottom-up for all units.
//
// An unresolved view error propagates out as *UnhandledViewError and skips
// the response phase, since no Response exists to carry through it. A hook
// that errors, or that returns an invalid value, aborts the request with a
// *HookError; if this happens mid-unwind, the remaining unwind is abandoned.
func (c *Chain) Dispatch(req *Request, view View) (*Response, error) {
	c.dispatches.Inc()
	resp, err := c.dispatch(req, view)
	if err != nil {
		c.faults.Inc()
	}
	return resp, err
}

func (c *Chain) dispatch(req *Request, view View) (*Response, error) {
	resp, err := c.requestPhase(req)
	if err != nil {
		return nil, err
	}

	if resp == nil {
		resp, err = c.viewPhase(req, view)
		if err != nil {
			return nil, err
		}
	}

	if resp == nil {
		var viewErr error
		resp, viewErr = view.call(req)
		if viewErr != nil {
			resp = c.exceptionPhase(req, viewErr)
			if resp == nil {
				return nil, &UnhandledViewError{View: view.Name, Err: viewErr}
			}
		} else if resp == nil {
			return nil, &UnhandledViewError{View: view.Name, Err: fmt.Errorf("view returned neither a response nor an error")}
		}
	}

	return c.responsePhase(req, resp)
}

func (c *Chain) requestPhase(req *Request) (*Response, error) {
	for i := range c.links {
		l := &c.links[i]
		if l.caps&capRequest == 0 {
			continue
		}
		resp, err := l.unit.(RequestProcessor).ProcessRequest(req)
		if err != nil {
			return nil, &HookError{Unit: l.name, Hook: HookRequest, Err: err}
		}
		if resp != nil {
			return resp, nil
		}
	}
	return nil, nil
}

func (c *Chain) viewPhase(req *Request, view View) (*Response, error) {
	for i := range c.links {
		l := &c.links[i]
		if l.caps&capView == 0 {
			continue
		}
		resp, err := l.unit.(ViewProcessor).ProcessView(req, view)
		if err != nil {
			return nil, &HookError{Unit: l.name, Hook: HookView, Err: err}
		}
		if resp != nil {
			return resp, nil
		}
	}
	return nil, nil
}

func (c *Chain) exceptionPhase(req *Request, viewErr error) *Response {
	for i := len(c.links) - 1; i >= 0; i-- {
		l := &c.links[i]
		if l.caps&capException == 0 {
			continue
		}
		if resp := l.unit.(ExceptionProcessor).ProcessException(req, viewErr); resp != nil {
			return resp
		}
	}
	return nil
}

func (c *Chain) responsePhase(req *Request, resp *Response) (*Response, error) {
	// Template-response pass, only while the response is still deferred.
	if resp.Deferred() {
		for i := len(c.links) - 1; i >= 0; i-- {
			l := &c.links[i]
			if l.caps&capTemplate == 0 {
				continue
			}
			out, err := l.unit.(TemplateProcessor).ProcessTemplateResponse(req, resp)
			if err != nil {
				return nil, &HookError{Unit: l.name, Hook: HookTemplateResponse, Err: err}
			}
			if out == nil {
				return nil, &HookError{Unit: l.name, Hook: HookTemplateResponse, Err: ErrNilResponse}
			}
			if !out.Deferred() {
				return nil, &HookError{Unit: l.name, Hook: HookTemplateResponse, Err: fmt.Errorf("hook returned a response that no longer supports deferred rendering")}
			}
			resp = out
		}
		// The single render transition, performed by the pipeline itself.
		if err := resp.Render(req.Context()); err != nil {
			return nil, fmt.Errorf("strata: rendering template %q: %w", resp.template, err)
		}
	}

	// Response pass, unconditionally bottom-up across all units.
	for i := len(c.links) - 1; i >= 0; i-- {
		l := &c.links[i]
		if l.caps&capResponse == 0 {
			continue
		}
		out, err := l.unit.(ResponseProcessor).ProcessResponse(req, resp)
		if err != nil {
			return nil, &HookError{Unit: l.name, Hook: HookResponse, Err: err}
		}
		if out == nil {
			return nil, &HookError{Unit: l.name, Hook: HookResponse, Err: ErrNilResponse}
		}
		resp = out
	}
	return resp, nil
}
