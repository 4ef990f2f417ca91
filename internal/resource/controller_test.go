package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	assert.ErrorIs(t, c.AcquireMemory(20), ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(1000))
	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_FetchSlots(t *testing.T) {
	c := NewController(Config{MaxConcurrentFetches: 2})
	ctx := context.Background()

	require.NoError(t, c.AcquireFetch(ctx))
	require.NoError(t, c.AcquireFetch(ctx))
	assert.Equal(t, int64(2), c.InFlight())

	blocked, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireFetch(blocked), context.DeadlineExceeded)

	c.ReleaseFetch()
	require.NoError(t, c.AcquireFetch(ctx))
	assert.Equal(t, int64(3), c.Fetches())
}

func TestController_FetchRate(t *testing.T) {
	c := NewController(Config{FetchesPerSec: 1, FetchBurst: 1})
	ctx := context.Background()

	require.NoError(t, c.AcquireFetch(ctx))
	c.ReleaseFetch()

	// The bucket is empty and the next token is a second away.
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireFetch(short))
	assert.Equal(t, int64(0), c.InFlight())
}

func TestController_NilSafe(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireFetch(context.Background()))
	c.ReleaseFetch()
	require.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.Equal(t, Config{}, c.Config())
}
