package cacheinfra

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-search-cache/cache"
)

var _ cache.Store = (*MemoryStore)(nil)

// ErrStoreClosed is returned by a MemoryStore after Close.
var ErrStoreClosed = errors.New("cacheinfra: store closed")

// MemoryStore is an in-process cache.Store backed by a sturdyc client.
// Entries are only visible inside the current process.
type MemoryStore struct {
	client *sturdyc.Client[[]byte]
	closed atomic.Bool
}

// NewMemoryStore validates cfg and creates the sturdyc client.
func NewMemoryStore(cfg MemoryConfig) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.Retention,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &MemoryStore{client: client}, nil
}

// Get returns a copy of the bytes stored under key, or nil when absent.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	value, ok := s.client.Get(key)
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), value...), nil
}

// Set stores a copy of value under key.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.client.Set(key, append([]byte(nil), value...))
	return nil
}

// Ping reports whether the store is still open.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return s.check(ctx)
}

// Close marks the store closed. Later calls fail with ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	return nil
}

// Len returns the number of entries currently held.
func (s *MemoryStore) Len() int {
	return s.client.Size()
}

func (s *MemoryStore) check(ctx context.Context) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	return ctx.Err()
}
