package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLSetGet(t *testing.T) {
	c := NewTTL(10, time.Minute)
	c.Set("k", "v")

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestTTLMissingKey(t *testing.T) {
	c := NewTTL(10, time.Minute)
	_, ok := c.Get("absent")
	assert.False(t, ok)
}

func TestTTLOverwriteReplacesValue(t *testing.T) {
	c := NewTTL(10, time.Minute)
	c.Set("k", 1)
	c.Set("k", 2)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Len())
}

func TestTTLEvictsOldestWhenFull(t *testing.T) {
	c := NewTTL(3, time.Minute)
	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	assert.Equal(t, 3, c.Len())

	_, ok := c.Get("k0")
	assert.False(t, ok)

	got, ok := c.Get("k3")
	require.True(t, ok)
	assert.Equal(t, 3, got)
}

func TestTTLExpiry(t *testing.T) {
	c := NewTTL(10, time.Minute)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set("k", "v")

	current = current.Add(30 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLZeroTTLNeverExpires(t *testing.T) {
	c := NewTTL(10, 0)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set("k", "v")
	current = current.Add(1000 * time.Hour)

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestTTLConcurrentAccess(t *testing.T) {
	c := NewTTL(100, time.Minute)

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%50)
				c.Set(key, g)
				c.Get(key)
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}

	assert.LessOrEqual(t, c.Len(), 100)
}
