package collector

import "strconv"

// Total is a total hit count. A lower-bound total is a deliberately truncated
// estimate: the true count is at least Value and it must never be used as an
// exact count for pagination completeness.
type Total struct {
	Value      int
	LowerBound bool
}

// Exact returns an exact total.
func Exact(n int) Total { return Total{Value: n} }

// AtLeast returns a lower-bound total.
func AtLeast(n int) Total { return Total{Value: n, LowerBound: true} }

// IsExact reports whether Value is the true count.
func (t Total) IsExact() bool { return !t.LowerBound }

func (t Total) String() string {
	if t.LowerBound {
		return ">=" + strconv.Itoa(t.Value)
	}
	return strconv.Itoa(t.Value)
}

// hitCounter counts matches up to a threshold. Once a match arrives past the
// threshold the count freezes and becomes a lower bound.
type hitCounter struct {
	threshold int
	count     int
	lower     bool
}

func newHitCounter(threshold int) hitCounter {
	if threshold < 0 {
		threshold = 0
	}
	return hitCounter{threshold: threshold}
}

// add counts one match and reports whether the count is still exact.
func (c *hitCounter) add() bool {
	if c.lower {
		return false
	}
	if c.count >= c.threshold {
		c.lower = true
		return false
	}
	c.count++
	return true
}

func (c *hitCounter) total() Total { return Total{Value: c.count, LowerBound: c.lower} }
