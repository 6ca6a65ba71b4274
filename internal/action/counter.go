// Package action holds the bounding machinery of the bot loop: counters,
// the actions a limit can trigger, and the limits themselves.
package action

import "strconv"

// Counter is a plain integer counter owned by a single component.
type Counter struct {
	value int64
}

// NewCounter returns a Counter starting at init.
func NewCounter(init int64) *Counter {
	return &Counter{value: init}
}

// Inc adds one to the counter.
func (c *Counter) Inc() { c.value++ }

// Reset sets the counter back to zero.
func (c *Counter) Reset() { c.value = 0 }

// IsGreaterOrEqual reports whether the counter is >= v.
func (c *Counter) IsGreaterOrEqual(v int64) bool { return c.value >= v }

// IsLessOrEqual reports whether the counter is <= v.
func (c *Counter) IsLessOrEqual(v int64) bool { return c.value <= v }

// Value returns the current count.
func (c *Counter) Value() int64 { return c.value }

func (c *Counter) String() string { return strconv.FormatInt(c.value, 10) }
