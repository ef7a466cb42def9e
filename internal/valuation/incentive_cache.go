package valuation

import (
	"context"
	"strings"
	"sync"

	"positionScope/internal/model"
)

// incentiveCache memoizes per-pool incentive snapshots for the process
// lifetime. Incentive programs change on the order of days, so staleness is
// acceptable; known-absent pools are cached as nil to avoid repeat lookups.
type incentiveCache struct {
	mu     sync.RWMutex
	source IncentiveSource
	data   map[string]*model.IncentiveInfo
	known  map[string]struct{}
}

func newIncentiveCache(source IncentiveSource) *incentiveCache {
	return &incentiveCache{
		source: source,
		data:   make(map[string]*model.IncentiveInfo),
		known:  make(map[string]struct{}),
	}
}

func (c *incentiveCache) IncentivesForPools(ctx context.Context, pools []string) (map[string]*model.IncentiveInfo, error) {
	out := make(map[string]*model.IncentiveInfo, len(pools))
	var missing []string

	c.mu.RLock()
	for _, pool := range pools {
		pool = strings.ToLower(pool)
		if _, ok := c.known[pool]; ok {
			if info := c.data[pool]; info != nil {
				out[pool] = info
			}
			continue
		}
		missing = append(missing, pool)
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}
	if c.source == nil {
		return out, nil
	}

	fetched, err := c.source.IncentivesForPools(ctx, missing)
	if err != nil {
		return out, err
	}

	c.mu.Lock()
	for _, pool := range missing {
		info := fetched[pool]
		c.known[pool] = struct{}{}
		c.data[pool] = info
		if info != nil {
			out[pool] = info
		}
	}
	c.mu.Unlock()

	return out, nil
}
