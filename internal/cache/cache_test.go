package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	t.Parallel()

	c := New[[]int](time.Minute)
	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", []int{1, 2})
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 1, c.Len())
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	c := New[string](20 * time.Millisecond)
	c.Set("k", "v")
	time.Sleep(50 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, GenerateKey("a", "b"), GenerateKey("a", "b"))
	assert.NotEqual(t, GenerateKey("ab", ""), GenerateKey("a", "b"))
	assert.Len(t, GenerateKey("x"), 64)
}
