// Package memory is an in-process session store with TTL expiry. Suitable
// for single-instance deployments and tests; use the redis store when
// sessions must survive restarts or span replicas.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/strata-go/strata/middlewares/session"
)

// Store keeps sessions in an expiring in-memory cache.
type Store struct {
	sessions   *gocache.Cache
	expiration time.Duration
}

// InitStore builds a store whose sessions expire after the given duration.
func InitStore(expiration time.Duration) *Store {
	return &Store{
		sessions:   gocache.New(expiration, time.Minute),
		expiration: expiration,
	}
}

func (s *Store) Generate(ctx context.Context, id string) (session.Session, error) {
	sess := &memorySession{id: id, values: make(map[string]any)}
	s.sessions.Set(id, sess, s.expiration)
	return sess, nil
}

func (s *Store) Get(ctx context.Context, id string) (session.Session, error) {
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return v.(*memorySession), nil
}

func (s *Store) Refresh(ctx context.Context, id string) error {
	v, ok := s.sessions.Get(id)
	if !ok {
		return session.ErrSessionNotFound
	}
	// Re-setting resets the TTL.
	s.sessions.Set(id, v, s.expiration)
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	s.sessions.Delete(id)
	return nil
}

type memorySession struct {
	id     string
	mu     sync.RWMutex
	values map[string]any
}

func (s *memorySession) ID() string { return s.id }

func (s *memorySession) Get(ctx context.Context, key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("session: key %q not set", key)
	}
	return v, nil
}

func (s *memorySession) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
