// Package redis is redis implementation of storage.ShownStore and of middleware's cache storage.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/feedhub/feedrank/internal/entities"
	"github.com/feedhub/feedrank/internal/storage"
)

const (
	shownPrefix = "feedrank:shown:"
	cachePrefix = "feedrank:cache:"
)

// Store ...
type Store struct {
	c *goredis.Client
}

// New creates new instance of Store.
func New(c *goredis.Client) *Store {
	return &Store{c: c}
}

// Ping ...
func (s *Store) Ping(ctx context.Context) error {
	if err := s.c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping: %w", err)
	}

	return nil
}

// GetShown ...
func (s *Store) GetShown(ctx context.Context, session string) (*entities.Shown, error) {
	b, err := s.c.Get(ctx, shownPrefix+session).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to get: %w", err)
	}

	var shown entities.Shown
	if err := json.Unmarshal(b, &shown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shown: %w", err)
	}

	return &shown, nil
}

// SetShown ...
func (s *Store) SetShown(ctx context.Context, session string, shown *entities.Shown, ttl time.Duration) error {
	b, err := json.Marshal(shown)
	if err != nil {
		return fmt.Errorf("failed to marshal shown: %w", err)
	}

	if err := s.c.Set(ctx, shownPrefix+session, b, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set: %w", err)
	}

	return nil
}

// Get returns cached content, nil content means miss.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.c.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to get: %w", err)
	}

	return b, nil
}

// Set puts content into cache.
func (s *Store) Set(ctx context.Context, key string, content []byte, ttl time.Duration) error {
	if err := s.c.Set(ctx, cachePrefix+key, content, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set: %w", err)
	}

	return nil
}
