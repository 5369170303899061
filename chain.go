package strata

import "go.uber.org/atomic"

// Chain is the composed invocation structure built once from a registry and
// shared, read-only, by every concurrently executing request. Its length and
// order never change after construction. The nesting is equivalent to
// wrapping unit[0] around unit[1] around ... around the view invocation:
// request and view hooks run top-down, the response-side hooks bottom-up.
type Chain struct {
	links []link

	dispatches atomic.Int64
	faults     atomic.Int64
}

// link is one node of the chain: a unit plus the capability set probed at
// registration time.
type link struct {
	name string
	unit Unit
	caps capability
}

// NewChain builds the chain for a registry. The registry's order is the
// chain's order.
func NewChain(reg *Registry) *Chain {
	links := make([]link, len(reg.entries))
	for i, e := range reg.entries {
		links[i] = link{name: e.name, unit: e.unit, caps: e.caps}
	}
	return &Chain{links: links}
}

// Len reports the number of links.
func (c *Chain) Len() int { return len(c.links) }

// Names returns the unit names in chain order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.links))
	for i, l := range c.links {
		names[i] = l.name
	}
	return names
}

// Stats reports how many dispatches this chain has executed and how many of
// them ended in a fault (HookError or UnhandledViewError).
func (c *Chain) Stats() (dispatches, faults int64) {
	return c.dispatches.Load(), c.faults.Load()
}

// Then returns the chain composed around a view: the single HandleFunc form
// of the onion, built once and reusable across requests.
func (c *Chain) Then(view View) HandleFunc {
	return func(req *Request) (*Response, error) {
		return c.Dispatch(req, view)
	}
}
