// Package cache memoizes oracle verdicts so repeated candidates do not pay
// for a second classification.
package cache

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/repairlab/testgen/core"
)

type entry struct {
	verdict core.Verdict
	meta    core.Metadata
}

// Stats counts cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
}

// MemoizingOracle wraps an oracle with an LRU verdict cache keyed by the
// candidate's string form. Concurrent classifications of the same candidate
// are collapsed into one call. Errors are never cached.
type MemoizingOracle struct {
	inner core.Oracle
	cache *lru.Cache[string, entry]
	group singleflight.Group

	mu    sync.Mutex
	stats Stats
}

// NewMemoizingOracle creates a memoizing wrapper holding up to size verdicts.
func NewMemoizingOracle(inner core.Oracle, size int) (*MemoizingOracle, error) {
	cache, err := lru.New[string, entry](size)
	if err != nil {
		return nil, fmt.Errorf("create verdict cache: %w", err)
	}
	return &MemoizingOracle{inner: inner, cache: cache}, nil
}

func (m *MemoizingOracle) Classify(ctx context.Context, c core.Candidate) (core.Verdict, core.Metadata, error) {
	key := c.String()

	if cached, ok := m.cache.Get(key); ok {
		m.count(true)
		return cached.verdict, cached.meta, nil
	}
	m.count(false)

	result, err, _ := m.group.Do(key, func() (interface{}, error) {
		verdict, meta, err := m.inner.Classify(ctx, c)
		if err != nil {
			return nil, err
		}
		e := entry{verdict: verdict, meta: meta}
		m.cache.Add(key, e)
		return e, nil
	})
	if err != nil {
		return core.VerdictUndefined, nil, err
	}

	e := result.(entry)
	return e.verdict, e.meta, nil
}

// Stats returns a snapshot of hit/miss counts.
func (m *MemoizingOracle) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *MemoizingOracle) count(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.stats.Hits++
	} else {
		m.stats.Misses++
	}
}
