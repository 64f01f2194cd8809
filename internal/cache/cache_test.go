package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPut_Basic(t *testing.T) {
	c := New(64)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("q", "response")
	got, ok := c.Get("q")
	require.True(t, ok)
	assert.Equal(t, "response", got)
}

func TestPut_UpdatesExisting(t *testing.T) {
	c := New(64)
	c.Put("q", "old")
	c.Put("q", "new")

	got, ok := c.Get("q")
	require.True(t, ok)
	assert.Equal(t, "new", got)
	assert.Equal(t, 1, c.Len())
}

func TestShardCapacityBound(t *testing.T) {
	// Given: a single shard of capacity 4
	c := NewSharded(4, 1)

	// When: putting many more distinct keys
	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("k%d", i), "v")
	}

	// Then: size never exceeds capacity and the most recent keys remain
	assert.Equal(t, 4, c.Len())
	for i := 96; i < 100; i++ {
		_, ok := c.Get(fmt.Sprintf("k%d", i))
		assert.True(t, ok, "recent key k%d evicted", i)
	}
}

func TestLRUEvictionOrder(t *testing.T) {
	// Given: one shard with room for two entries
	c := NewSharded(2, 1)

	// When: put a, b, refresh a, put c
	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("a", "1")
	c.Put("c", "3")

	// Then: b was least recently used and is gone; a and c remain
	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestGetRefreshesRecency(t *testing.T) {
	c := NewSharded(2, 1)
	c.Put("a", "1")
	c.Put("b", "2")

	// Touching a makes b the eviction victim.
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Put("c", "3")

	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestMinimumShardCapacity(t *testing.T) {
	// Total capacity below the shard count still yields capacity 1 per
	// shard, never zero.
	c := NewSharded(4, 16)
	c.Put("k", "v")
	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestPurge(t *testing.T) {
	c := New(64)
	c.Put("a", "1")
	c.Put("b", "2")

	c.Purge()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestHitRate(t *testing.T) {
	c := New(64)

	assert.Equal(t, 0.0, c.HitRate(), "no queries yet")

	c.RecordQuery(true)
	c.RecordQuery(false)
	c.RecordQuery(false)
	c.RecordQuery(false)

	assert.InDelta(t, 0.25, c.HitRate(), 1e-12)
	assert.GreaterOrEqual(t, c.HitRate(), 0.0)
	assert.LessOrEqual(t, c.HitRate(), 1.0)
}

func TestConcurrentAccess(t *testing.T) {
	c := New(128)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", i%50)
				if v, ok := c.Get(key); ok {
					assert.Equal(t, "v", v)
					c.RecordQuery(true)
				} else {
					c.Put(key, "v")
					c.RecordQuery(false)
				}
			}
		}(g)
	}
	wg.Wait()

	rate := c.HitRate()
	assert.GreaterOrEqual(t, rate, 0.0)
	assert.LessOrEqual(t, rate, 1.0)
	assert.LessOrEqual(t, c.Len(), 128)
}
