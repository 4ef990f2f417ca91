// Package resource governs the shared limits of document loading.
//
// A Controller is shared by every loader session of a process:
//
//   - Fetches: a weighted semaphore caps concurrent blob reads across all batches
//   - Pacing: a token bucket limits blob reads per second
//   - Memory: fail-fast accounting of payload bytes held by session caches
//
// Fetch slots block until available or the context ends. AcquireMemory never
// blocks; callers skip caching when it fails.
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentFetches: 32,
//	    FetchesPerSec:        500,
//	    MemoryLimitBytes:     256 << 20,
//	})
//
//	if err := rc.AcquireFetch(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseFetch()
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
