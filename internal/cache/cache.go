// Package cache keeps the trip-details read model in Redis so the
// hot GET path does not hit MySQL on every poll.  Entries are dropped
// whenever any seat or ride mutation touches the ride; the short TTL
// is only a backstop for missed invalidations.  A nil Redis client
// disables the cache entirely — every call becomes a no-op.
package cache

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "time"

    "github.com/redis/go-redis/v9"
)

// detailsTTL bounds staleness when an invalidation is lost (process
// crash between commit and InvalidateRide).
const detailsTTL = 15 * time.Second

// TripCache stores JSON-serialized trip details keyed by ride ID.
type TripCache struct {
    rdb *redis.Client
}

// NewTripCache wraps the given client.  rdb may be nil.
func NewTripCache(rdb *redis.Client) *TripCache { return &TripCache{rdb: rdb} }

func rideKey(rideID uint64) string { return fmt.Sprintf("ride:%d:details", rideID) }

// GetDetails loads cached trip details into dst.  The boolean result
// reports a hit; all failures count as misses.
func (c *TripCache) GetDetails(ctx context.Context, rideID uint64, dst any) bool {
    if c == nil || c.rdb == nil {
        return false
    }
    raw, err := c.rdb.Get(ctx, rideKey(rideID)).Bytes()
    if err != nil {
        return false
    }
    if err := json.Unmarshal(raw, dst); err != nil {
        return false
    }
    return true
}

// SetDetails stores trip details under the ride's key.  Failures are
// logged and ignored; the cache is never load-bearing.
func (c *TripCache) SetDetails(ctx context.Context, rideID uint64, v any) {
    if c == nil || c.rdb == nil {
        return
    }
    raw, err := json.Marshal(v)
    if err != nil {
        return
    }
    if err := c.rdb.Set(ctx, rideKey(rideID), raw, detailsTTL).Err(); err != nil {
        log.Printf("cache: set ride %d details: %v", rideID, err)
    }
}

// InvalidateRide drops the cached read model for a ride.  Called
// after every committed mutation of that ride, including the
// scheduler's departure and finish effects.
func (c *TripCache) InvalidateRide(ctx context.Context, rideID uint64) {
    if c == nil || c.rdb == nil {
        return
    }
    if err := c.rdb.Del(ctx, rideKey(rideID)).Err(); err != nil {
        log.Printf("cache: invalidate ride %d: %v", rideID, err)
    }
}
