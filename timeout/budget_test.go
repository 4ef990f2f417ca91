package timeout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestBudget_Truncate(t *testing.T) {
	clk := newClock()
	b := TruncateAfter(100*time.Millisecond, WithClock(clk.Now))

	assert.False(t, b.Expired(), "not started yet")

	b.Start()
	clk.Advance(50 * time.Millisecond)
	expired, err := b.Check()
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, 50*time.Millisecond, b.Remaining())

	clk.Advance(60 * time.Millisecond)
	expired, err = b.Check()
	require.NoError(t, err)
	assert.True(t, expired)
	assert.True(t, b.TimedOut())
	assert.Equal(t, time.Duration(0), b.Remaining())
	assert.False(t, b.HasHardTimeout())
}

func TestBudget_Fail(t *testing.T) {
	clk := newClock()
	b := FailAfter(10*time.Millisecond, WithClock(clk.Now))
	b.Start()
	clk.Advance(11 * time.Millisecond)

	expired, err := b.Check()
	assert.True(t, expired)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 10*time.Millisecond, te.Limit)
	assert.True(t, b.HasHardTimeout())
}

func TestBudget_SharedAcrossSubScans(t *testing.T) {
	clk := newClock()
	b := TruncateAfter(time.Second, WithClock(clk.Now))

	b.Start()
	clk.Advance(300 * time.Millisecond)
	b.Stop()
	assert.Equal(t, 300*time.Millisecond, b.Took())

	clk.Advance(100 * time.Millisecond)
	b.Start() // second sub-scan keeps the original anchor
	clk.Advance(200 * time.Millisecond)
	b.Stop()

	assert.Equal(t, 600*time.Millisecond, b.Took())
	deadline, ok := b.Deadline()
	require.True(t, ok)
	assert.Equal(t, newClock().t.Add(time.Second), deadline)
}

func TestBudget_None(t *testing.T) {
	b := None()
	b.Start()
	expired, err := b.Check()
	require.NoError(t, err)
	assert.False(t, expired)
	assert.False(t, b.HasDeadline())
	assert.Equal(t, time.Duration(-1), b.Remaining())
}

func TestBudget_NilSafe(t *testing.T) {
	var b *Budget
	b.Start()
	b.Stop()
	b.MarkTimedOut()
	assert.False(t, b.TimedOut())
	assert.False(t, b.Expired())
	assert.Equal(t, ModeNone, b.Mode())
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeNone, ModeTruncate, ModeFail} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("explode")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	b := None()
	ctx := WithBudget(context.Background(), b)
	assert.Same(t, b, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
