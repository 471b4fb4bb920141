package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.Set(ctx, "k1", payload{Name: "a", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "k1", &got))
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache()

	var got string
	err := c.Get(context.Background(), "absent", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var got string
	err := c.Get(ctx, "k1", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", "v", 0))

	var got string
	require.NoError(t, c.Get(ctx, "k1", &got))
	assert.Equal(t, "v", got)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k1", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k1"))

	var got string
	assert.ErrorIs(t, c.Get(ctx, "k1", &got), ErrCacheMiss)
}
