package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTTLCacheSetGet(t *testing.T) {
	c, err := NewTTLCache[[]string](0)
	require.NoError(t, err)
	defer c.Close()

	key := Key{Generation: 1, Cwd: "/p", Query: "but", Limit: 20}
	c.Set(key, []string{"button.ts"}, false)

	got, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, []string{"button.ts"}, got)
}

func TestTTLCacheGenerationBumpInvalidates(t *testing.T) {
	c, err := NewTTLCache[[]string](0)
	require.NoError(t, err)
	defer c.Close()

	key1 := Key{Generation: 1, Cwd: "/p", Query: "foo", Limit: 20}
	c.Set(key1, []string{"foo.go"}, false)

	key2 := Key{Generation: 2, Cwd: "/p", Query: "foo", Limit: 20}
	_, ok := c.Get(key2)
	require.False(t, ok, "a new generation must miss even for an otherwise identical key")
}

func TestTTLCacheEmptyResultsExpireFaster(t *testing.T) {
	c, err := NewTTLCache[[]string](0)
	require.NoError(t, err)
	defer c.Close()

	key := Key{Generation: 1, Cwd: "/p", Query: "zzz", Limit: 20}
	c.Set(key, nil, true)

	time.Sleep(EmptyTTL + 50*time.Millisecond)

	_, ok := c.Get(key)
	require.False(t, ok)
}

func TestTTLCachePositiveResultsSurviveWithinTTL(t *testing.T) {
	c, err := NewTTLCache[[]string](0)
	require.NoError(t, err)
	defer c.Close()

	key := Key{Generation: 1, Cwd: "/p", Query: "but", Limit: 20}
	c.Set(key, []string{"button.ts"}, false)

	time.Sleep(50 * time.Millisecond)

	_, ok := c.Get(key)
	require.True(t, ok)
}

func TestTTLCacheHitRate(t *testing.T) {
	c, err := NewTTLCache[[]string](0)
	require.NoError(t, err)
	defer c.Close()

	require.Equal(t, float64(0), c.HitRate())

	key := Key{Generation: 1, Cwd: "/p", Query: "but", Limit: 20}
	c.Set(key, []string{"button.ts"}, false)

	c.Get(key)
	c.Get(Key{Generation: 1, Cwd: "/p", Query: "missing", Limit: 20})

	require.InDelta(t, 0.5, c.HitRate(), 0.001)
}
