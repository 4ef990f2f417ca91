// Package cache provides a generic, size-bounded LRU cache.
//
// It backs both the CachingStore blob cache (weighted by bytes) and the loader's
// per-session document cache (weighted by entries).
package cache
