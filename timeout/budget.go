package timeout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrTimeout is matched by every *Error returned in fail mode.
var ErrTimeout = errors.New("search timed out")

// Error is returned by Check when a fail-mode budget has expired.
type Error struct {
	Limit   time.Duration
	Elapsed time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("search timed out after %s (limit %s)", e.Elapsed, e.Limit)
}

// Is reports whether target is ErrTimeout.
func (e *Error) Is(target error) bool { return target == ErrTimeout }

// Mode selects what happens once the deadline has passed.
type Mode uint8

const (
	// ModeNone disables the deadline.
	ModeNone Mode = iota
	// ModeTruncate degrades results (lower-bound totals, partial aggregates).
	ModeTruncate
	// ModeFail turns an expired deadline into an *Error.
	ModeFail
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeTruncate:
		return "truncate"
	case ModeFail:
		return "fail"
	default:
		return "none"
	}
}

// ParseMode parses a configuration name ("none", "truncate", "fail").
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "none":
		return ModeNone, nil
	case "truncate":
		return ModeTruncate, nil
	case "fail":
		return ModeFail, nil
	default:
		return ModeNone, fmt.Errorf("unknown timeout mode %q", s)
	}
}

// Option configures a Budget.
type Option func(*Budget)

// WithClock replaces time.Now. Used by tests to drive the budget deterministically.
func WithClock(now func() time.Time) Option {
	return func(b *Budget) {
		if now != nil {
			b.now = now
		}
	}
}

// Budget tracks elapsed time against a deadline across all sub-scans of one request.
//
// The deadline is anchored at the first Start call; later Start calls (one per
// sub-scan) reuse it, so a scroll or a two-pass count shares one time limit.
type Budget struct {
	mode  Mode
	limit time.Duration
	now   func() time.Time

	started time.Time
	stopped time.Time
	running bool

	timedOut atomic.Bool
}

// New creates a budget with the given mode and limit.
func New(mode Mode, limit time.Duration, opts ...Option) *Budget {
	b := &Budget{
		mode:  mode,
		limit: limit,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// None returns a budget without a deadline. It still measures took durations.
func None(opts ...Option) *Budget { return New(ModeNone, 0, opts...) }

// TruncateAfter returns a budget that degrades results once d has elapsed.
func TruncateAfter(d time.Duration, opts ...Option) *Budget {
	return New(ModeTruncate, d, opts...)
}

// FailAfter returns a budget that fails the request once d has elapsed.
func FailAfter(d time.Duration, opts ...Option) *Budget {
	return New(ModeFail, d, opts...)
}

// Mode returns the configured mode.
func (b *Budget) Mode() Mode {
	if b == nil {
		return ModeNone
	}
	return b.mode
}

// Limit returns the configured limit (0 for ModeNone).
func (b *Budget) Limit() time.Duration {
	if b == nil || b.mode == ModeNone {
		return 0
	}
	return b.limit
}

// Start marks the beginning of a sub-scan.
func (b *Budget) Start() {
	if b == nil {
		return
	}
	if b.started.IsZero() {
		b.started = b.now()
	}
	b.running = true
}

// Stop marks the end of a sub-scan.
func (b *Budget) Stop() {
	if b == nil || !b.running {
		return
	}
	b.stopped = b.now()
	b.running = false
}

// Elapsed returns the time since the first Start.
func (b *Budget) Elapsed() time.Duration {
	if b == nil || b.started.IsZero() {
		return 0
	}
	return b.now().Sub(b.started)
}

// Took returns the time between the first Start and the last Stop.
// While running it is the same as Elapsed.
func (b *Budget) Took() time.Duration {
	if b == nil || b.started.IsZero() {
		return 0
	}
	if b.running || b.stopped.IsZero() {
		return b.Elapsed()
	}
	return b.stopped.Sub(b.started)
}

// HasDeadline reports whether a deadline is configured.
func (b *Budget) HasDeadline() bool {
	return b != nil && b.mode != ModeNone
}

// HasHardTimeout reports whether the deadline must be enforced inside scans.
func (b *Budget) HasHardTimeout() bool {
	return b != nil && b.mode == ModeFail
}

// Deadline returns the absolute deadline. ok is false without a deadline or before Start.
func (b *Budget) Deadline() (deadline time.Time, ok bool) {
	if !b.HasDeadline() || b.started.IsZero() {
		return time.Time{}, false
	}
	return b.started.Add(b.limit), true
}

// Remaining returns the time left before the deadline, never negative.
// Without a deadline it returns -1.
func (b *Budget) Remaining() time.Duration {
	if !b.HasDeadline() {
		return -1
	}
	r := b.limit - b.Elapsed()
	if r < 0 {
		return 0
	}
	return r
}

// Expired reports whether the deadline has passed. It does not mark the budget.
func (b *Budget) Expired() bool {
	if !b.HasDeadline() || b.started.IsZero() {
		return false
	}
	return b.Elapsed() >= b.limit
}

// Check polls the deadline. If it has passed, truncate mode marks the budget
// as timed out and returns expired=true; fail mode additionally returns an *Error.
func (b *Budget) Check() (expired bool, err error) {
	if !b.Expired() {
		return false, nil
	}
	b.timedOut.Store(true)
	if b.mode == ModeFail {
		return true, &Error{Limit: b.limit, Elapsed: b.Elapsed()}
	}
	return true, nil
}

// MarkTimedOut records that some work was skipped or truncated.
func (b *Budget) MarkTimedOut() {
	if b == nil {
		return
	}
	b.timedOut.Store(true)
}

// TimedOut reports whether any check observed an expired deadline.
func (b *Budget) TimedOut() bool {
	if b == nil {
		return false
	}
	return b.timedOut.Load()
}

type budgetKey struct{}

// WithBudget attaches a budget to a context.
func WithBudget(ctx context.Context, b *Budget) context.Context {
	return context.WithValue(ctx, budgetKey{}, b)
}

// FromContext returns the budget attached to ctx, or nil.
func FromContext(ctx context.Context) *Budget {
	if b, ok := ctx.Value(budgetKey{}).(*Budget); ok {
		return b
	}
	return nil
}
