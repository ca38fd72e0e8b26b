// Package cache defines the memoization contract consumed by the container's
// resolution engine, plus two implementations: an unbounded in-memory map and
// a TTL-aware adapter over github.com/patrickmn/go-cache.
//
// The contract follows PSR-16: every key must be a non-empty string and every
// bulk argument must be a non-nil collection. Violations fail with
// ErrInvalidCacheKey before anything is written.
package cache

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCacheKey is returned when a key or bulk argument is malformed.
var ErrInvalidCacheKey = errors.New("invalid cache key")

// InvalidKeyError carries the offending argument.
type InvalidKeyError struct {
	Op     string
	Reason string
}

func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("cache %s: %s", e.Op, e.Reason)
}

func (e InvalidKeyError) Unwrap() error { return ErrInvalidCacheKey }

// Item is a key/value pair for SetMultiple. A slice of items keeps the
// caller's order.
type Item struct {
	Key   string
	Value any
}

// Cache is a simple key/value memoization store.
type Cache interface {
	// Get returns the value for key or def when the key is not cached.
	Get(key string, def any) (any, error)

	// Set stores value under key. A ttl of zero means "forever"; whether a
	// positive ttl is enforced depends on the implementation.
	Set(key string, value any, ttl time.Duration) (bool, error)

	// Delete removes key and reports whether something was removed.
	Delete(key string) (bool, error)

	// Has reports whether key holds a non-nil value.
	Has(key string) (bool, error)

	// Clear empties the cache.
	Clear() bool

	// GetMultiple returns a value (or def) for every key.
	GetMultiple(keys []string, def any) (map[string]any, error)

	// SetMultiple stores every item in order.
	SetMultiple(items []Item, ttl time.Duration) (bool, error)

	// DeleteMultiple removes every key.
	DeleteMultiple(keys []string) (bool, error)
}

func validateKey(op, key string) error {
	if key == "" {
		return InvalidKeyError{Op: op, Reason: "the key must be a valid string"}
	}
	return nil
}

func validateKeys(op string, keys []string) error {
	if keys == nil {
		return InvalidKeyError{Op: op, Reason: "the keys must be a valid collection"}
	}
	for _, k := range keys {
		if err := validateKey(op, k); err != nil {
			return err
		}
	}
	return nil
}

func validateItems(op string, items []Item) error {
	if items == nil {
		return InvalidKeyError{Op: op, Reason: "the values must be a valid collection"}
	}
	for _, it := range items {
		if err := validateKey(op, it.Key); err != nil {
			return err
		}
	}
	return nil
}
