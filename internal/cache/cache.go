// Package cache stores model completions so repeat reviews of the same
// document skip the network round-trip.
package cache

import "time"

// Cache defines the interface for completion caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}
