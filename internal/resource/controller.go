package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits. Zero values mean unlimited.
type Config struct {
	// MaxConcurrentFetches caps in-flight blob reads.
	MaxConcurrentFetches int64

	// FetchesPerSec is the sustained blob read rate.
	FetchesPerSec float64

	// FetchBurst is the token bucket size. Defaults to max(1, FetchesPerSec).
	FetchBurst int

	// MemoryLimitBytes is the hard limit for cached payload bytes.
	MemoryLimitBytes int64
}

// Controller manages limits shared across loader sessions.
type Controller struct {
	cfg Config

	fetchSem *semaphore.Weighted // nil if unlimited
	limiter  *rate.Limiter       // nil if unlimited

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	inFlight atomic.Int64
	fetches  atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxConcurrentFetches > 0 {
		c.fetchSem = semaphore.NewWeighted(cfg.MaxConcurrentFetches)
	}
	if cfg.FetchesPerSec > 0 {
		burst := cfg.FetchBurst
		if burst <= 0 {
			burst = max(1, int(cfg.FetchesPerSec))
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.FetchesPerSec), burst)
	}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	return c
}

// Config returns the configured limits.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireFetch waits for a fetch slot and a rate token.
func (c *Controller) AcquireFetch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	if c.fetchSem != nil {
		if err := c.fetchSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if c.fetchSem != nil {
				c.fetchSem.Release(1)
			}
			return err
		}
	}
	c.inFlight.Add(1)
	c.fetches.Add(1)
	return nil
}

// ReleaseFetch returns a slot taken by AcquireFetch.
func (c *Controller) ReleaseFetch() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	if c.fetchSem != nil {
		c.fetchSem.Release(1)
	}
}

// InFlight returns the number of fetches currently holding a slot.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// Fetches returns the number of fetches admitted so far.
func (c *Controller) Fetches() int64 {
	if c == nil {
		return 0
	}
	return c.fetches.Load()
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}
	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}
