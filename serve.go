package strata

import "net/http"

// Handler adapts a chain plus a view to net/http. It is the outermost
// collaborator: pipeline faults that escape the chain become a generic 500
// here, outside the dispatch core.
type Handler struct {
	chain *Chain
	view  View
	log   Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// HandlerWithLogger overrides the handler's logger.
func HandlerWithLogger(log Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler builds the http.Handler form of a chain around a view.
func NewHandler(chain *Chain, view View, opts ...HandlerOption) *Handler {
	h := &Handler{chain: chain, view: view, log: DefaultLogger()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := FromHTTP(r)
	resp, err := h.chain.Dispatch(req, h.view)
	if err != nil {
		h.log.Error("pipeline fault on %s %s: %v", req.Method, req.Path, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	header := w.Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	switch resp.Kind() {
	case KindStreaming:
		h.flushStream(w, resp.Stream())
	default:
		if body := resp.Body(); len(body) > 0 {
			if _, err := w.Write(body); err != nil {
				h.log.Error("writing response: %v", err)
			}
		}
	}
}

// flushStream writes the stream chunk by chunk, flushing after each one so a
// slow or unbounded body reaches the client as it is produced. If the client
// disconnects, writing fails and chunk production simply stops; no signal
// flows back through the already-run hooks.
func (h *Handler) flushStream(w http.ResponseWriter, s Stream) {
	flusher, _ := w.(http.Flusher)
	for {
		chunk, ok := s()
		if !ok {
			return
		}
		if _, err := w.Write(chunk); err != nil {
			h.log.Error("writing stream chunk: %v", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
