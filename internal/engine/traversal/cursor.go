package traversal

import (
	"time"
)

// Cursor records where a paused walk continues, as child offsets read from
// the root down. A final offset points at an entry that has not been visited
// yet; every earlier offset points at a directory whose own symbol was
// already emitted and whose children are being walked.
type Cursor struct {
	offsets []int
}

func CursorFrom(offsets []int) Cursor {
	if len(offsets) == 0 {
		return Cursor{}
	}
	return Cursor{offsets: append([]int(nil), offsets...)}
}

// Active reports whether a paused walk is waiting to be resumed.
func (c Cursor) Active() bool {
	return len(c.offsets) > 0
}

func (c Cursor) Offsets() []int {
	return append([]int{}, c.offsets...)
}

// Budget bounds one call by entry count and wall-clock time. Checks happen
// between entries only.
type Budget struct {
	limit    int
	used     int
	deadline time.Time
	now      func() time.Time
}

// NewBudget starts the clock now. Non-positive values disable a bound.
func NewBudget(limit int, timeout time.Duration) *Budget {
	b := &Budget{limit: limit, now: time.Now}
	if timeout > 0 {
		b.deadline = b.now().Add(timeout)
	}
	return b
}

func (b *Budget) Exhausted() bool {
	if b.limit > 0 && b.used >= b.limit {
		return true
	}
	return !b.deadline.IsZero() && b.now().After(b.deadline)
}

func (b *Budget) Spend() {
	b.used++
}

func (b *Budget) Used() int {
	return b.used
}
