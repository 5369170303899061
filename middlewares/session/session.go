// Package session attaches a server-side session to every request. The
// session identifier travels via a pluggable Propagator (cookies by default)
// and the data lives in a pluggable Store; memory and redis stores ship in
// subpackages.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/strata-go/strata"
)

// ValueKey is the request extension slot holding the Session.
const ValueKey = "session"

const newKey = "session_new"

// ErrSessionNotFound is returned by stores for unknown or expired ids.
var ErrSessionNotFound = errors.New("session: not found")

// Session is one client's server-side state.
type Session interface {
	ID() string
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any) error
}

// Store creates, retrieves and expires sessions by id.
type Store interface {
	Generate(ctx context.Context, id string) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Refresh(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
}

// Propagator carries the session id between client and server.
type Propagator interface {
	Inject(id string, resp *strata.Response) error
	Extract(req *strata.Request) (string, error)
	Remove(resp *strata.Response) error
}

// Middleware resolves the session in the request hook and propagates the id
// in the response hook. The store and propagator are shared state and must
// be concurrency-safe; the session itself rides on the request.
type Middleware struct {
	store      Store
	propagator Propagator
}

// New builds the middleware.
func New(store Store, propagator Propagator) (*Middleware, error) {
	if store == nil {
		return nil, fmt.Errorf("session: nil store")
	}
	if propagator == nil {
		return nil, fmt.Errorf("session: nil propagator")
	}
	return &Middleware{store: store, propagator: propagator}, nil
}

func (m *Middleware) ProcessRequest(req *strata.Request) (*strata.Response, error) {
	ctx := req.Context()

	if id, err := m.propagator.Extract(req); err == nil && id != "" {
		sess, err := m.store.Get(ctx, id)
		if err == nil {
			req.Set(ValueKey, sess)
			return nil, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("session: loading %s: %w", id, err)
		}
		// Stale id: fall through and start fresh.
	}

	sess, err := m.store.Generate(ctx, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("session: generating: %w", err)
	}
	req.Set(ValueKey, sess)
	req.Set(newKey, true)
	return nil, nil
}

func (m *Middleware) ProcessResponse(req *strata.Request, resp *strata.Response) (*strata.Response, error) {
	sess := FromRequest(req)
	if sess == nil {
		return resp, nil
	}

	if isNew, _ := req.Get(newKey); isNew == true {
		if err := m.propagator.Inject(sess.ID(), resp); err != nil {
			return nil, fmt.Errorf("session: injecting id: %w", err)
		}
		return resp, nil
	}

	// Sliding expiration. A session expiring between the two hooks is not
	// worth failing the response over.
	if err := m.store.Refresh(req.Context(), sess.ID()); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("session: refreshing %s: %w", sess.ID(), err)
	}
	return resp, nil
}

// Destroy removes the session from the store and tells the client to drop
// the id. Views call it on logout.
func (m *Middleware) Destroy(req *strata.Request, resp *strata.Response) error {
	sess := FromRequest(req)
	if sess == nil {
		return ErrSessionNotFound
	}
	if err := m.store.Remove(req.Context(), sess.ID()); err != nil {
		return err
	}
	return m.propagator.Remove(resp)
}

// FromRequest returns the session attached to the request, or nil.
func FromRequest(req *strata.Request) Session {
	if v, ok := req.Get(ValueKey); ok {
		if sess, ok := v.(Session); ok {
			return sess
		}
	}
	return nil
}
