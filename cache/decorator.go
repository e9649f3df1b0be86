package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-search-cache/pkg/log"
)

const (
	// DefaultWindow is the expiration window used when none is configured.
	DefaultWindow = 300 * time.Second
	// DefaultWriteTimeout bounds a single write-through to the store.
	DefaultWriteTimeout = 2 * time.Second
)

// Entry is what the Decorator stores for each key.
type Entry[T any] struct {
	Timestamp time.Time `msgpack:"timestamp" json:"timestamp"`
	Response  T         `msgpack:"response" json:"response"`
}

// Fresh reports whether the entry is younger than window at now.
func (e Entry[T]) Fresh(now time.Time, window time.Duration) bool {
	return now.Sub(e.Timestamp) < window
}

// Decorator adds cache-then-compute semantics to lookup functions.
// It holds no per-key state unless single-flight is enabled; all entries
// live in the engine's store.
type Decorator struct {
	engine       *Engine
	serializer   KeySerializer
	window       time.Duration
	now          func() time.Time
	flight       *singleflight.Group
	asyncWrites  bool
	writeTimeout time.Duration
	observer     Observer
}

// Option configures a Decorator.
type Option func(*Decorator)

// WithExpiration sets the expiration window.
func WithExpiration(window time.Duration) Option {
	return func(d *Decorator) {
		if window > 0 {
			d.window = window
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Decorator) {
		if now != nil {
			d.now = now
		}
	}
}

// WithKeySerializer replaces the default canonicalization.
func WithKeySerializer(s KeySerializer) Option {
	return func(d *Decorator) {
		if s != nil {
			d.serializer = s
		}
	}
}

// WithSingleFlight lets concurrent misses on the same key share one fetch.
// Without it every concurrent caller on a miss invokes the wrapped function.
// The shared fetch ignores cancellation of the caller that started it;
// every caller still returns early when its own context is done.
func WithSingleFlight() Option {
	return func(d *Decorator) {
		d.flight = &singleflight.Group{}
	}
}

// WithAsyncWrites dispatches write-through in a background goroutine.
// Encoding still happens on the caller's goroutine so a *CacheError is
// never lost.
func WithAsyncWrites() Option {
	return func(d *Decorator) {
		d.asyncWrites = true
	}
}

// WithWriteTimeout bounds each store write.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(d *Decorator) {
		if timeout > 0 {
			d.writeTimeout = timeout
		}
	}
}

// WithObserver registers an observer for lookup outcomes.
func WithObserver(o Observer) Option {
	return func(d *Decorator) {
		if o != nil {
			d.observer = o
		}
	}
}

// NewDecorator creates a Decorator over engine.
func NewDecorator(engine *Engine, opts ...Option) *Decorator {
	d := &Decorator{
		engine:       engine,
		serializer:   NewDefaultKeySerializer(),
		window:       DefaultWindow,
		now:          time.Now,
		writeTimeout: DefaultWriteTimeout,
		observer:     nopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithWindow returns a copy of d bound to a different expiration window,
// so each call site can pick its own.
func (d *Decorator) WithWindow(window time.Duration) *Decorator {
	cp := *d
	if window > 0 {
		cp.window = window
	}
	return &cp
}

// Window returns the expiration window.
func (d *Decorator) Window() time.Duration {
	return d.window
}

// Engine returns the underlying engine.
func (d *Decorator) Engine() *Engine {
	return d.engine
}

// Through returns the cached response for call when it is fresh, otherwise
// it invokes fetch, writes {now, response} through to the store and returns
// the response.
//
// Read failures degrade to calling fetch. Errors from fetch are returned
// untouched and nothing is cached. A response the codec cannot encode
// yields a *CacheError.
func Through[T any](ctx context.Context, d *Decorator, call Call, fetch FetchFn[T]) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	key := call.Key(d.serializer)
	if d.flight == nil {
		return lookup(ctx, d, call.Identity, key, fetch)
	}

	// the shared lookup outlives any single caller; each caller stops
	// waiting when its own context is done
	shared := context.WithoutCancel(ctx)
	ch := d.flight.DoChan(key, func() (any, error) {
		return lookup(shared, d, call.Identity, key, fetch)
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		// a nil interface comes back for nil interface-typed responses
		res, _ := r.Val.(T)
		return res, nil
	}
}

func lookup[T any](ctx context.Context, d *Decorator, identity, key string, fetch FetchFn[T]) (T, error) {
	var zero T

	var entry Entry[T]
	found, err := d.engine.Get(ctx, key, &entry)
	switch {
	case err != nil:
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldCacheIdentity, identity).Msg("cache read failed, calling source")
		d.observer.ObserveCache(identity, OutcomeReadError)
	case found && entry.Fresh(d.now(), d.window):
		d.observer.ObserveCache(identity, OutcomeHit)
		return entry.Response, nil
	case found:
		d.observer.ObserveCache(identity, OutcomeStale)
	default:
		d.observer.ObserveCache(identity, OutcomeMiss)
	}

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	response, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	data, err := d.engine.Encode(key, Entry[T]{Timestamp: d.now(), Response: response})
	if err != nil {
		return zero, err
	}

	d.write(ctx, identity, key, data)
	return response, nil
}

// write stores data under key. It is detached from the caller's
// cancellation so a dispatched write is allowed to finish. Store failures
// are logged only; the cache is an optimization.
func (d *Decorator) write(ctx context.Context, identity, key string, data []byte) {
	detached := context.WithoutCancel(ctx)

	put := func() {
		wctx, cancel := context.WithTimeout(detached, d.writeTimeout)
		defer cancel()

		if err := d.engine.Put(wctx, key, data); err != nil {
			l := log.Ctx(detached)
			l.Warn().Err(err).Str(log.FieldCacheIdentity, identity).Msg("cache write failed")
			d.observer.ObserveCache(identity, OutcomeWriteError)
		}
	}

	if d.asyncWrites {
		go put()
		return
	}
	put()
}

// Wrap returns fn with caching added. The key identity is FuncIdentity(fn).
func Wrap[A, R any](d *Decorator, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	return WrapNamed(d, FuncIdentity(fn), fn)
}

// WrapNamed is Wrap with an explicit identity.
func WrapNamed[A, R any](d *Decorator, identity string, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	return func(ctx context.Context, a A) (R, error) {
		return Through(ctx, d, Call{Identity: identity, Args: []any{a}}, func(ctx context.Context) (R, error) {
			return fn(ctx, a)
		})
	}
}

// Wrap2 is Wrap for two-argument lookups.
func Wrap2[A, B, R any](d *Decorator, fn func(context.Context, A, B) (R, error)) func(context.Context, A, B) (R, error) {
	identity := FuncIdentity(fn)
	return func(ctx context.Context, a A, b B) (R, error) {
		return Through(ctx, d, Call{Identity: identity, Args: []any{a, b}}, func(ctx context.Context) (R, error) {
			return fn(ctx, a, b)
		})
	}
}
