package lexigo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lexigo/search"
	"github.com/hupe1980/lexigo/timeout"
)

var (
	// ErrClosed is returned when the Searcher has been closed.
	ErrClosed = errors.New("searcher is closed")

	// ErrNoHits is returned by First when the query matches nothing.
	ErrNoHits = errors.New("no hits")

	// ErrTimeout matches every error caused by an expired fail-mode budget.
	ErrTimeout = errors.New("request timed out")

	// ErrMisuse matches API misuse: consumed results, negative windows,
	// explain targets outside the plan, closed scrolls.
	ErrMisuse = errors.New("invalid use")

	// ErrEngine matches failures of the underlying index reader.
	ErrEngine = errors.New("engine failure")
)

// ErrInvalidLimit indicates a negative page size.
type ErrInvalidLimit struct {
	Limit int
}

func (e *ErrInvalidLimit) Error() string {
	return fmt.Sprintf("invalid limit: %d", e.Limit)
}

// Is reports ErrInvalidLimit as misuse.
func (e *ErrInvalidLimit) Is(target error) bool { return target == ErrMisuse }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, timeout.ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if search.IsMisuse(err) {
		return fmt.Errorf("%w: %w", ErrMisuse, err)
	}
	var ee *search.EngineError
	if errors.As(err, &ee) {
		return fmt.Errorf("%w: %w", ErrEngine, err)
	}

	return err
}
