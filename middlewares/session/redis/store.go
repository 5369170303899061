// Package redis backs sessions with a Redis hash per session, so sessions
// survive restarts and are shared across replicas.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/strata-go/strata/middlewares/session"
)

// Store keeps each session in a Redis hash keyed by prefix and id.
type Store struct {
	prefix     string
	client     redis.Cmdable
	expiration time.Duration
}

// Option configures InitStore.
type Option func(store *Store)

// WithExpiration overrides the 15 minute default TTL.
func WithExpiration(expiration time.Duration) Option {
	return func(store *Store) { store.expiration = expiration }
}

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(store *Store) { store.prefix = prefix }
}

// InitStore builds a store around an existing client.
func InitStore(client redis.Cmdable, opts ...Option) *Store {
	s := &Store{
		client:     client,
		expiration: 15 * time.Minute,
		prefix:     "session",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Generate(ctx context.Context, id string) (session.Session, error) {
	key := redisKey(s.prefix, id)
	if err := s.client.HSet(ctx, key, "_id", id).Err(); err != nil {
		return nil, err
	}
	if err := s.client.Expire(ctx, key, s.expiration).Err(); err != nil {
		return nil, err
	}
	return &redisSession{id: id, key: key, client: s.client}, nil
}

func (s *Store) Get(ctx context.Context, id string) (session.Session, error) {
	key := redisKey(s.prefix, id)
	cnt, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if cnt != 1 {
		return nil, session.ErrSessionNotFound
	}
	return &redisSession{id: id, key: key, client: s.client}, nil
}

func (s *Store) Refresh(ctx context.Context, id string) error {
	ok, err := s.client.Expire(ctx, redisKey(s.prefix, id), s.expiration).Result()
	if err != nil {
		return err
	}
	if !ok {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKey(s.prefix, id)).Err()
}

type redisSession struct {
	id     string
	key    string
	client redis.Cmdable
}

func (s *redisSession) ID() string { return s.id }

func (s *redisSession) Get(ctx context.Context, key string) (any, error) {
	return s.client.HGet(ctx, s.key, key).Result()
}

// setIfExists guards against writing fields into a session that expired
// between lookup and write.
const setIfExists = `
if redis.call("exists", KEYS[1]) == 1
then
	return redis.call("hset", KEYS[1], ARGV[1], ARGV[2])
else
	return -1
end
`

func (s *redisSession) Set(ctx context.Context, key string, value any) error {
	res, err := s.client.Eval(ctx, setIfExists, []string{s.key}, key, value).Int()
	if err != nil {
		return err
	}
	if res < 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func redisKey(prefix, id string) string {
	return fmt.Sprintf("%s:%s", prefix, id)
}
