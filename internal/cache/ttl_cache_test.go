package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func counter() (func() (int, error), *int) {
	calls := 0
	return func() (int, error) {
		calls++
		return calls, nil
	}, &calls
}

func TestTTLCacheServesUntilExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache[string, int](time.Minute)
	c.now = func() time.Time { return now }
	load, calls := counter()

	v, err := c.GetOrLoad("all_time", load)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	now = now.Add(59 * time.Second)
	v, _ = c.GetOrLoad("all_time", load)
	require.Equal(t, 1, v)
	require.Equal(t, 1, *calls)

	now = now.Add(time.Second)
	v, _ = c.GetOrLoad("all_time", load)
	require.Equal(t, 2, v)
}

func TestTTLCachePurge(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute)
	load, calls := counter()

	_, _ = c.GetOrLoad("monthly", load)
	c.Purge()
	require.Zero(t, c.Len())

	v, _ := c.GetOrLoad("monthly", load)
	require.Equal(t, 2, v)
	require.Equal(t, 2, *calls)
}

func TestTTLCacheDropsLoadRacingPurge(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute)

	v, err := c.GetOrLoad("all_time", func() (int, error) {
		c.Purge()
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Zero(t, c.Len())
}

func TestTTLCacheDoesNotStoreErrors(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute)
	boom := errors.New("boom")

	_, err := c.GetOrLoad("all_time", func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	require.Zero(t, c.Len())
}

func TestNewWithoutTTLIsNoop(t *testing.T) {
	c := New[string, int](0)
	load, calls := counter()
	_, _ = c.GetOrLoad("a", load)
	_, _ = c.GetOrLoad("a", load)
	require.Equal(t, 2, *calls)
}
