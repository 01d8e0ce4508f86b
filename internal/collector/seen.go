package collector

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// SeenCache remembers snapshot row keys so a long-running loop does not rewrite
// rows it already emitted. Entries expire after the TTL, keeping memory bounded.
type SeenCache struct {
	cache *gocache.Cache
}

func NewSeenCache(ttl time.Duration) *SeenCache {
	if ttl <= 0 {
		ttl = 25 * time.Hour
	}
	return &SeenCache{cache: gocache.New(ttl, ttl/2)}
}

// Seen reports whether key was marked before, marking it either way.
func (s *SeenCache) Seen(key string) bool {
	if _, ok := s.cache.Get(key); ok {
		return true
	}
	s.cache.SetDefault(key, struct{}{})
	return false
}
