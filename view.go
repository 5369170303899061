package strata

// ViewFunc is the signature of a view handler. The positional and keyword
// arguments are the ones carried by the View descriptor; the request is
// passed separately and is never part of them.
type ViewFunc func(req *Request, args []any, kwargs map[string]any) (*Response, error)

// View describes the handler a chain dispatches to once the request and
// view phases complete: the handler reference plus its arguments. View
// descriptors are plain values and safe to share across requests.
type View struct {
	Name    string
	Handler ViewFunc
	Args    []any
	Kwargs  map[string]any
}

// NewView builds a descriptor around a handler with no arguments.
func NewView(name string, handler ViewFunc) View {
	return View{Name: name, Handler: handler}
}

// call invokes the handler, folding a panic into the error path so that it
// flows through the exception hooks like any other view error.
func (v View) call(req *Request) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = &PanicError{Value: r}
		}
	}()
	return v.Handler(req, v.Args, v.Kwargs)
}
