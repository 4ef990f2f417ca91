package search

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyConsumed is returned by a second Materialize on one LoadableResult.
	ErrAlreadyConsumed = errors.New("loadable result already consumed")

	// ErrExplainTargetMismatch is returned when explain targets an index the plan does not.
	ErrExplainTargetMismatch = errors.New("explain target is not one of the plan's indexes")

	// ErrNegativeWindow is returned for a negative offset.
	ErrNegativeWindow = errors.New("negative window offset")

	// ErrInvalidChunkSize is returned for a scroll chunk size below 1.
	ErrInvalidChunkSize = errors.New("scroll chunk size must be positive")

	// ErrScrollClosed is returned by Next after Close.
	ErrScrollClosed = errors.New("scroll closed")

	// ErrNoHitMapper is returned when hits need loading and no mapper was given.
	ErrNoHitMapper = errors.New("hits need loading but no hit mapper was given")

	// ErrHitType is returned when a projected hit is not of the requested type.
	ErrHitType = errors.New("projected hit has unexpected type")
)

// EngineError is an engine I/O failure during a scan or an extraction.
// It carries the query and the index it failed on and is never retried.
//
// The original underlying error can be accessed via errors.Unwrap.
type EngineError struct {
	Op    string
	Query string
	Index string
	Err   error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s on index %q for query %s: %v", e.Op, e.Index, e.Query, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// IsMisuse reports whether err is a programmer error of this package.
func IsMisuse(err error) bool {
	for _, target := range []error{
		ErrAlreadyConsumed, ErrExplainTargetMismatch, ErrNegativeWindow,
		ErrInvalidChunkSize, ErrScrollClosed, ErrNoHitMapper, ErrHitType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
