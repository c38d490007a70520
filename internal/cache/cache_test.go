package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Score int64  `json:"score"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, "leaderboard", ttl), mr
}

func TestCache_SetGetInvalidate(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	var got []entry
	found, err := c.Get(ctx, "overall", &got)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.Set(ctx, "overall", []entry{{"alice", 10}}))
	require.True(t, mr.Exists("leaderboard:overall"))

	found, err = c.Get(ctx, "overall", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []entry{{"alice", 10}}, got)

	require.NoError(t, c.Invalidate(ctx, "overall", "task"))
	found, err = c.Get(ctx, "overall", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestCache_Expires(t *testing.T) {
	c, mr := newTestCache(t, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "task", []entry{{"bob", 1}}))
	mr.FastForward(2 * time.Second)

	var got []entry
	found, err := c.Get(ctx, "task", &got)
	require.NoError(t, err)
	require.False(t, found)
}

func TestCache_NilIsAlwaysMiss(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1))
	var v int
	found, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, c.Invalidate(ctx, "k"))
}
