package ticket

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// RistrettoReplayCache backs ReplayCache with an in-memory TinyLFU cache,
// generalized from the teacher's common/cache GeneralCache wrapper: same
// dgraph-io/ristretto v0.1.1 construction, narrowed to the one
// check-and-mark operation ticket verification needs instead of a general
// get/set/delete surface.
type RistrettoReplayCache struct {
	cache *ristretto.Cache
}

// NewRistrettoReplayCache sizes the cache the way the teacher's
// NewGeneralCache does: NumCounters at 10x the expected max entries,
// MaxCost as the entry budget, and a small BufferItems since jtis are
// small, short-lived keys.
func NewRistrettoReplayCache(maxEntries int64) (*RistrettoReplayCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoReplayCache{cache: cache}, nil
}

// CheckAndMark reports whether jti has already been redeemed and, if not,
// marks it seen until ttl elapses (at minimum the ticket's own remaining
// validity window, so a replay can never slip through the cache expiring
// first).
func (c *RistrettoReplayCache) CheckAndMark(jti string, ttl time.Duration) bool {
	if _, found := c.cache.Get(jti); found {
		return true
	}
	c.cache.SetWithTTL(jti, struct{}{}, 1, ttl)
	c.cache.Wait()
	return false
}

func (c *RistrettoReplayCache) Close() {
	c.cache.Close()
}
