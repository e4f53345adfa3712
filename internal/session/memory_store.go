package session

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore keeps snapshots in process memory with per entry expiry.
type MemoryStore struct {
	cache *ttlcache.Cache[string, Snapshot]
}

// NewMemoryStore creates the store and starts its expiry loop; Close stops it.
// A capacity of zero means unbounded.
func NewMemoryStore(ttl time.Duration, capacity uint64) *MemoryStore {
	opts := []ttlcache.Option[string, Snapshot]{
		ttlcache.WithTTL[string, Snapshot](ttl),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, Snapshot](capacity))
	}
	cache := ttlcache.New[string, Snapshot](opts...)
	go cache.Start()
	return &MemoryStore{cache: cache}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Snapshot, error) {
	item := s.cache.Get(id)
	if item == nil || item.IsExpired() {
		return Snapshot{}, ErrSessionNotFound
	}
	return item.Value(), nil
}

func (s *MemoryStore) Set(_ context.Context, id string, snap Snapshot, ttl time.Duration) error {
	s.cache.Set(id, snap, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}

func (s *MemoryStore) Close() {
	s.cache.Stop()
}
