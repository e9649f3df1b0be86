// Package cache adds read-through, write-through caching to lookup functions.
//
// # Overview
//
// A Decorator sits in front of any context-aware lookup. On each call it
// canonicalizes the lookup identity and arguments into a key, asks the Engine
// for the entry stored under that key and returns the stored response when it
// is younger than the expiration window. Otherwise it invokes the lookup,
// stores {timestamp, response} and returns the response.
//
// The package exports three pieces that can be replaced independently:
//
//   - Store: the key-value backend (see internal/cacheinfra for Redis and
//     in-process implementations)
//   - Codec: how entries become bytes (msgpack by default, JSON optional)
//   - KeySerializer: how identity and arguments become a key
//
// # Basic Usage
//
//	engine := cache.NewEngine(store, cache.WithPrefix("movies"))
//	d := cache.NewDecorator(engine, cache.WithExpiration(5*time.Minute))
//
//	film, err := cache.Through(ctx, d, cache.Call{
//		Identity: "films.get_item",
//		Args:     []any{id},
//	}, func(ctx context.Context) (*model.Film, error) {
//		return films.GetItem(ctx, id)
//	})
//
// Functions with a fixed shape can be wrapped once instead:
//
//	getItem := cache.Wrap(d, films.GetItem)
//	film, err := getItem(ctx, id)
//
// # Keys
//
// The default serializer produces compact JSON:
//
//	{"callable":"sum","args":[[1,2,3]],"kwargs":[["start",10]]}
//
// Keyword arguments passed as a trailing Kwargs are sorted by name, so their
// order never changes the key. Positional and keyword forms of the same call
// produce different keys. Values JSON cannot encode are replaced by a base64
// msgpack form, and values neither codec can encode by a hash of their
// reflective dump. Building a key never fails.
//
// Identities derived with FuncIdentity are the fully qualified function or
// method name, so same-named functions from different packages never share
// entries. Every function literal shares the identity "<anonymous>", so two
// closures called with the same arguments share entries; use WrapNamed for
// closures.
//
// # Failure Handling
//
// Reading the cache is best effort: store failures and undecodable entries
// are logged and treated as misses. Errors returned by the lookup are passed
// through unchanged and never cached. A response the codec cannot encode is
// reported as a *CacheError wrapping ErrSerialization. Failed writes are
// logged and the response is still returned.
//
// # Concurrency
//
// Concurrent misses on the same key each invoke the lookup unless the
// decorator is built WithSingleFlight.
package cache
