// Package cache provides the sharded LRU query cache shared by all
// request goroutines at serve time. Keys shard by hash; each shard
// holds its own mutex and LRU list, so no cross-shard lock is ever
// taken and the cache is deadlock-free by construction.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultShardCount is the shard count used by New.
const DefaultShardCount = 16

type shard struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, string]
}

// Cache is a sharded LRU mapping query strings to serialized responses.
// String values are immutable, so callers always observe a stable
// snapshot of what was put.
type Cache struct {
	shards []*shard

	// Hit-rate counters are observability only; relaxed atomics suffice.
	totalQueries atomic.Uint64
	hits         atomic.Uint64
}

// New returns a cache with DefaultShardCount shards splitting
// totalCapacity.
func New(totalCapacity int) *Cache {
	return NewSharded(totalCapacity, DefaultShardCount)
}

// NewSharded returns a cache with shardCount shards, each holding
// max(1, totalCapacity/shardCount) entries.
func NewSharded(totalCapacity, shardCount int) *Cache {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	perShard := totalCapacity / shardCount
	if perShard < 1 {
		perShard = 1
	}

	shards := make([]*shard, shardCount)
	for i := range shards {
		// simplelru.NewLRU errors only on non-positive size.
		l, _ := simplelru.NewLRU[string, string](perShard, nil)
		shards[i] = &shard{lru: l}
	}
	return &Cache{shards: shards}
}

func (c *Cache) shardFor(key string) *shard {
	return c.shards[xxhash.Sum64String(key)%uint64(len(c.shards))]
}

// Get returns the cached value for key and refreshes its recency.
func (c *Cache) Get(key string) (string, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Get(key)
}

// Put inserts or refreshes key, evicting the shard's least recently
// used entry when the shard is full.
func (c *Cache) Put(key, value string) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Add(key, value)
}

// Len returns the number of entries across all shards.
func (c *Cache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += s.lru.Len()
		s.mu.Unlock()
	}
	return total
}

// Purge drops every entry. Counters are unaffected.
func (c *Cache) Purge() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.lru.Purge()
		s.mu.Unlock()
	}
}

// RecordQuery counts one lookup toward the hit rate.
func (c *Cache) RecordQuery(hit bool) {
	c.totalQueries.Add(1)
	if hit {
		c.hits.Add(1)
	}
}

// HitRate returns hits/total, 0 before any query is recorded.
func (c *Cache) HitRate() float64 {
	total := c.totalQueries.Load()
	if total == 0 {
		return 0
	}
	return float64(c.hits.Load()) / float64(total)
}
