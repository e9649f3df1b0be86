package cache

import (
	"context"
	"fmt"

	"github.com/goliatone/go-search-cache/pkg/log"
)

// Engine mediates reads and writes of encoded values against a Store.
// It keeps no local state; the store is the only source of truth.
type Engine struct {
	store  Store
	codec  Codec
	prefix string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCodec replaces the default msgpack codec.
func WithCodec(codec Codec) EngineOption {
	return func(e *Engine) {
		if codec != nil {
			e.codec = codec
		}
	}
}

// WithPrefix namespaces every key written to the store as "<prefix>:<key>".
func WithPrefix(prefix string) EngineOption {
	return func(e *Engine) {
		e.prefix = prefix
	}
}

// NewEngine creates an Engine over store.
func NewEngine(store Store, opts ...EngineOption) *Engine {
	e := &Engine{store: store, codec: MsgpackCodec{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) storeKey(key string) string {
	if e.prefix == "" {
		return key
	}
	return e.prefix + ":" + key
}

// Get decodes the value stored under key into dest.
// A missing key yields (false, nil). An entry that cannot be decoded is
// logged and also reported as a miss, so corrupt data never fails a read.
// Only store failures are returned as errors.
func (e *Engine) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := e.store.Get(ctx, e.storeKey(key))
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}
	if data == nil {
		return false, nil
	}

	if err := e.codec.Unmarshal(data, dest); err != nil {
		l := log.Ctx(ctx)
		l.Warn().
			Err(err).
			Str(log.FieldCacheKey, key).
			Int("bytes", len(data)).
			Msg("discarding undecodable cache entry")
		return false, nil
	}

	return true, nil
}

// Encode serializes value, returning a *CacheError on failure.
func (e *Engine) Encode(key string, value any) ([]byte, error) {
	data, err := e.codec.Marshal(value)
	if err != nil {
		return nil, &CacheError{Op: "encode", Key: key, Err: fmt.Errorf("%w: %v", ErrSerialization, err)}
	}
	return data, nil
}

// Put writes already encoded bytes under key.
func (e *Engine) Put(ctx context.Context, key string, data []byte) error {
	if err := e.store.Set(ctx, e.storeKey(key), data); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Set encodes value and writes it through to the store.
func (e *Engine) Set(ctx context.Context, key string, value any) error {
	data, err := e.Encode(key, value)
	if err != nil {
		return err
	}
	return e.Put(ctx, key, data)
}

// Ping checks the store is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}

// Close releases the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}
