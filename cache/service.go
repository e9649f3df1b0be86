package cache

import "context"

// Store is the key-value backend the Engine reads from and writes through to.
// Get returns (nil, nil) when the key is absent. Implementations must be safe
// for concurrent use; connection errors are returned as-is, without retries.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Codec turns cache entries into bytes and back.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// KeySerializer builds a cache key from a function identity and its arguments.
// A trailing Kwargs argument is treated as keyword arguments.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(identity string, args ...any) string
}

// Kwargs holds keyword arguments for a cached call. Their order never
// affects the resulting key.
type Kwargs map[string]any

// FetchFn is the function the Decorator invokes on a miss or stale entry.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Call describes one invocation of a cached lookup.
type Call struct {
	Identity string
	Args     []any
	Kwargs   Kwargs
}

// Key canonicalizes the call with the given serializer.
func (c Call) Key(s KeySerializer) string {
	args := c.Args
	if len(c.Kwargs) > 0 {
		args = append(append(make([]any, 0, len(c.Args)+1), c.Args...), c.Kwargs)
	}
	return s.SerializeKey(c.Identity, args...)
}

// Outcome labels what happened to a single cache lookup.
type Outcome string

const (
	OutcomeHit        Outcome = "hit"
	OutcomeMiss       Outcome = "miss"
	OutcomeStale      Outcome = "stale"
	OutcomeReadError  Outcome = "read_error"
	OutcomeWriteError Outcome = "write_error"
)

// Observer receives one event per lookup and per failed write.
type Observer interface {
	ObserveCache(identity string, outcome Outcome)
}

type nopObserver struct{}

func (nopObserver) ObserveCache(string, Outcome) {}
