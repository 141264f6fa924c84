package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetSet(t *testing.T) {
	c := New[string](4, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", "one")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	c.Set("a", "two")
	v, _ = c.Get("a")
	assert.Equal(t, "two", v)
	assert.Equal(t, 1, c.Len())
}

func TestTTLExpiry(t *testing.T) {
	c := New[int](4, 10*time.Millisecond)

	c.Set("k", 1)
	_, ok := c.Get("k")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestEvictsOldestWhenFull(t *testing.T) {
	c := New[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestInvalidateUserDropsOnlyTheirKeys(t *testing.T) {
	c := New[int](8, time.Minute)

	c.Set(Key(1, "overview", ""), 1)
	c.Set(Key(1, "trends", "year=2025"), 2)
	c.Set(Key(2, "overview", ""), 3)

	c.InvalidateUser(1)

	_, ok := c.Get(Key(1, "overview", ""))
	assert.False(t, ok)
	_, ok = c.Get(Key(1, "trends", "year=2025"))
	assert.False(t, ok)
	_, ok = c.Get(Key(2, "overview", ""))
	assert.True(t, ok, "other users keep their entries")
}
