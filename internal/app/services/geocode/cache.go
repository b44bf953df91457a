package geocode

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

const cacheKeyPrefix = "geocode:"

// CachedLookup wraps a Lookup with a read-through cache. Resolved
// locations are kept in Redis when a client is configured and mirrored
// in-process, so a Redis outage degrades to local caching instead of
// failing lookups.
type CachedLookup struct {
	next   Lookup
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger

	mu    sync.RWMutex
	local map[string]Location
}

// NewCachedLookup wraps next with caching. client may be nil.
func NewCachedLookup(next Lookup, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedLookup {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if log == nil {
		log = logger.NewDefault("geocode-cache")
	}
	return &CachedLookup{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log,
		local:  make(map[string]Location),
	}
}

func (c *CachedLookup) Locate(ctx context.Context, building string) (Location, error) {
	key := cacheKey(building)

	c.mu.RLock()
	loc, ok := c.local[key]
	c.mu.RUnlock()
	if ok {
		return loc, nil
	}

	if c.client != nil {
		raw, err := c.client.Get(ctx, key).Result()
		if err == nil {
			var cached Location
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				c.storeLocal(key, cached)
				return cached, nil
			}
		} else if err != redis.Nil {
			c.log.WithError(err).Warnf("redis get failed for %s", key)
		}
	}

	loc, err := c.next.Locate(ctx, building)
	if err != nil {
		return Location{}, err
	}
	c.storeLocal(key, loc)

	if c.client != nil {
		if raw, err := json.Marshal(loc); err == nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.log.WithError(err).Warnf("redis set failed for %s", key)
			}
		}
	}
	return loc, nil
}

func (c *CachedLookup) storeLocal(key string, loc Location) {
	c.mu.Lock()
	c.local[key] = loc
	c.mu.Unlock()
}

func cacheKey(building string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(building))
}
