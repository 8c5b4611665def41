// Package navigation keeps each viewer's week-view reference date and moves it
// forward, backward or back to today.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/p-n-ai/pai-records/internal/platform/cache"
)

// Store persists the reference date per viewer.
type Store interface {
	// Reference returns the stored date and whether one exists.
	Reference(ctx context.Context, viewer string) (time.Time, bool, error)
	SetReference(ctx context.Context, viewer string, ref time.Time) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	refs map[string]time.Time
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{refs: make(map[string]time.Time)}
}

func (s *MemoryStore) Reference(_ context.Context, viewer string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.refs[viewer]
	return ref, ok, nil
}

func (s *MemoryStore) SetReference(_ context.Context, viewer string, ref time.Time) error {
	s.mu.Lock()
	s.refs[viewer] = ref
	s.mu.Unlock()
	return nil
}

// RedisStore keeps reference dates in Dragonfly/Redis with a sliding TTL: every
// read or write pushes the expiry back by ttl.
type RedisStore struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRedisStore creates a cache-backed store. A zero ttl keeps entries forever.
func NewRedisStore(c *cache.Cache, ttl time.Duration) (*RedisStore, error) {
	if c == nil {
		return nil, fmt.Errorf("cache is nil")
	}
	return &RedisStore{cache: c, ttl: ttl}, nil
}

type storedReference struct {
	Reference time.Time `json:"reference"`
}

func (s *RedisStore) key(viewer string) string {
	return s.cache.Key("nav", viewer)
}

func (s *RedisStore) Reference(ctx context.Context, viewer string) (time.Time, bool, error) {
	var v storedReference
	err := s.cache.TouchJSON(ctx, s.key(viewer), &v, s.ttl)
	if errors.Is(err, cache.ErrMiss) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("loading reference for %s: %w", viewer, err)
	}
	return v.Reference, true, nil
}

func (s *RedisStore) SetReference(ctx context.Context, viewer string, ref time.Time) error {
	if err := s.cache.SetJSON(ctx, s.key(viewer), storedReference{Reference: ref}, s.ttl); err != nil {
		return fmt.Errorf("saving reference for %s: %w", viewer, err)
	}
	return nil
}
