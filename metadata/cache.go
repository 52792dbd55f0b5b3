package metadata

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// queryCache memoizes bound expressions keyed by the exact query string.
//
// The index never changes after Build, so a bound expression stays valid for
// the index's lifetime. Concurrent first evaluations of the same string are
// deduplicated with singleflight; parse or bind failures are not cached.
type queryCache struct {
	mu      sync.RWMutex
	entries map[string]boundExpr
	group   singleflight.Group
}

func (c *queryCache) init() {
	c.entries = make(map[string]boundExpr)
}

func (c *queryCache) get(query string, build func() (boundExpr, error)) (boundExpr, error) {
	c.mu.RLock()
	ex, ok := c.entries[query]
	c.mu.RUnlock()
	if ok {
		return ex, nil
	}

	v, err, _ := c.group.Do(query, func() (any, error) {
		c.mu.RLock()
		ex, ok := c.entries[query]
		c.mu.RUnlock()
		if ok {
			return ex, nil
		}

		ex, err := build()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[query] = ex
		c.mu.Unlock()
		return ex, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(boundExpr), nil
}
