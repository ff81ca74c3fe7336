package permissions

import (
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/hdcn/portal/pkg/observability"
)

const defaultCacheSize = 1024

// Cache memoizes complete resolutions for a short TTL. Entries are keyed by
// the canonical token list, so two sessions holding the same roles share one
// entry and a token refresh with a changed role list naturally misses. Cached
// values are immutable PermissionSets; there is no partial update or merge.
type Cache struct {
	resolver *Resolver
	entries  *lru.LRU[string, *PermissionSet]
	metrics  *observability.Metrics
}

// NewCache wraps a resolver with an expiring LRU of the given size and TTL.
func NewCache(resolver *Resolver, size int, ttl time.Duration, metrics *observability.Metrics) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &Cache{
		resolver: resolver,
		entries:  lru.NewLRU[string, *PermissionSet](size, nil, ttl),
		metrics:  metrics,
	}
}

// Resolve returns the cached PermissionSet for the token list, computing and
// storing it on a miss.
func (c *Cache) Resolve(tokens []string) *PermissionSet {
	key := cacheKey(tokens)
	if ps, ok := c.entries.Get(key); ok {
		if c.metrics != nil {
			c.metrics.PermissionCacheHitsTotal.Inc()
		}
		return ps
	}
	if c.metrics != nil {
		c.metrics.PermissionCacheMissesTotal.Inc()
	}
	ps := c.resolver.Resolve(tokens)
	c.entries.Add(key, ps)
	return ps
}

// Purge drops all cached entries, e.g. after a catalog overlay reload.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// cacheKey canonicalizes a token list: sorted, de-duplicated, joined with a
// separator that cannot occur in a group name.
func cacheKey(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)
	unique := sorted[:0]
	for i, t := range sorted {
		if i == 0 || sorted[i-1] != t {
			unique = append(unique, t)
		}
	}
	return strings.Join(unique, "\x1f")
}
