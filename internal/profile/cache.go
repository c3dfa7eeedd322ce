// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pdiddy/compound-engine/pkg/types"
)

const (
	defaultCacheEntries = 20
	defaultCacheTTL     = time.Hour
)

// cachedResult is one memoized pipeline outcome. notFound records a
// definitive registry miss so it short-circuits like a success.
type cachedResult struct {
	profile  *types.CompoundProfile
	notFound bool
}

// profileCache memoizes completed runs keyed by input type and query.
// Entries expire after the configured TTL; beyond the capacity the least
// recently used entry is evicted (R5.1, R5.2).
type profileCache struct {
	lru *expirable.LRU[string, cachedResult]
}

func newProfileCache(entries int, ttl time.Duration) *profileCache {
	if entries <= 0 {
		entries = defaultCacheEntries
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &profileCache{lru: expirable.NewLRU[string, cachedResult](entries, nil, ttl)}
}

// cacheKey separates the type from the query with a NUL so distinct pairs
// can never collide.
func cacheKey(query string, t types.InputType) string {
	return string(t) + "\x00" + query
}

func (c *profileCache) get(query string, t types.InputType) (cachedResult, bool) {
	return c.lru.Get(cacheKey(query, t))
}

func (c *profileCache) put(query string, t types.InputType, p *types.CompoundProfile) {
	c.lru.Add(cacheKey(query, t), cachedResult{profile: p})
}

func (c *profileCache) putNotFound(query string, t types.InputType) {
	c.lru.Add(cacheKey(query, t), cachedResult{notFound: true})
}

func (c *profileCache) len() int { return c.lru.Len() }
