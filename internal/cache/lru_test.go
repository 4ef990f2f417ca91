package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU_Eviction(t *testing.T) {
	var evicted []string
	c := New[string, int](2, WithOnEvict[string, int](func(k string, _ int) {
		evicted = append(evicted, k)
	}))

	c.Set("a", 1)
	c.Set("b", 2)
	_, ok := c.Get("a") // a becomes most recent
	assert.True(t, ok)
	c.Set("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Cost(t *testing.T) {
	c := New[string, []byte](10, WithCost[string](func(b []byte) int64 { return int64(len(b)) }))

	c.Set("big", make([]byte, 11))
	_, ok := c.Get("big")
	assert.False(t, ok, "entries over capacity are not cached")

	c.Set("k", make([]byte, 4))
	c.Set("k", make([]byte, 8))
	assert.Equal(t, int64(8), c.Size())

	c.Set("other", make([]byte, 3))
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, int64(3), c.Size())

	c.Set("other", make([]byte, 20))
	assert.Equal(t, 0, c.Len(), "oversized update drops the entry")
}

func TestLRU_DisabledCapacity(t *testing.T) {
	c := New[int, string](0)
	c.Set(1, "x")
	assert.Equal(t, 0, c.Len())
}

func TestLRU_RemoveInvalidateStats(t *testing.T) {
	c := New[string, int](10)
	c.Set("idx/1", 1)
	c.Set("idx/2", 2)
	c.Set("other/1", 3)

	assert.True(t, c.Remove("idx/2"))
	assert.False(t, c.Remove("idx/2"))

	c.Invalidate(func(k string) bool { return k[:3] == "idx" })
	_, ok := c.Get("idx/1")
	assert.False(t, ok)
	v, ok := c.Get("other/1")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}
