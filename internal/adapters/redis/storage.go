package redisad

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is a domain.Storage scoped to one key prefix. The BFF gives every
// visitor its own prefix so drafts never leak between browsers.
type Storage struct {
	c      *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStorage scopes c to prefix. Every write refreshes the key's ttl; zero
// means keys never expire.
func NewStorage(c *redis.Client, prefix string, ttl time.Duration) *Storage {
	return &Storage{c: c, prefix: prefix, ttl: ttl}
}

// VisitorPrefix is the namespace holding one visitor's state.
func VisitorPrefix(visitorID string) string { return "visitor:" + visitorID + ":" }

func (s *Storage) key(k string) string { return s.prefix + k }

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.c.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	return s.c.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	return s.c.Del(ctx, s.key(key)).Err()
}

// Clear drops everything under the prefix.
func (s *Storage) Clear(ctx context.Context) error {
	_, err := deletePattern(ctx, s.c, s.prefix+"*")
	return err
}
