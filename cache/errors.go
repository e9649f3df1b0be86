package cache

import (
	"errors"
	"fmt"
)

// ErrSerialization marks values the codec could not encode. It is always
// wrapped in a *CacheError.
var ErrSerialization = errors.New("cache: value is not serializable")

// CacheError reports a misuse of the cache, such as handing it a payload
// the codec cannot encode. It is surfaced to callers instead of being
// recovered like read failures are.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
