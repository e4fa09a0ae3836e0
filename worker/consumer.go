// Package worker implements the shared worker dispatch loop: it pulls
// bulk sample buffers from a single upstream Consumer, feeds them through
// an inspector's sample-feed pipeline, and surfaces batched symbol output
// on the output MQ, honoring the inspector's Halting/Halted lifecycle.
package worker

import "github.com/rf-tools/chanspector/inspector"

// Cursor is a worker's position into the shared sample ring the Consumer
// owns. It is stored as the bound inspector's TaskState.Cursor (an opaque
// any there, so the inspector package never needs to import worker).
type Cursor struct {
	next int
}

// NewCursor builds a Cursor positioned at next, the offset a Consumer
// implementation tracks however it sees fit (an index, a ring position, a
// timestamp cast to int — whatever the concrete source needs).
func NewCursor(next int) *Cursor { return &Cursor{next: next} }

// Next returns the offset a Cursor was built with.
func (c *Cursor) Next() int {
	if c == nil {
		return 0
	}
	return c.next
}

// Consumer is the shared upstream sample source every worker task pulls
// from, provided by a concrete implementation such as
// internal/source/audiosource.
type Consumer interface {
	// AssertSamples returns the next available contiguous run of samples
	// for cur (nil cur means the task has not consumed any samples yet),
	// and an updated cursor
	// to resume from. ok is false when no samples are currently available.
	AssertSamples(cur *Cursor) (samples []complex64, next *Cursor, ok bool)
	// Wait blocks until samples are likely available for cur, or the
	// consumer is permanently done producing (returns false). A pool
	// calls this before AssertSamples so that "no samples yet" is only
	// ever treated as a permanent drop once the consumer itself says no
	// more are coming, not on a startup race before the first buffer
	// arrives.
	Wait(cur *Cursor) bool
	// RemoveTask releases whatever resources the consumer held for cur.
	// Called on every drop path.
	RemoveTask(cur *Cursor)
}

// bind marks insp's task state as bound, with an empty cursor, on first
// dispatch. It is idempotent: once Bound, later calls are no-ops.
func bind(insp *inspector.Inspector) {
	if !insp.Task.Bound {
		insp.Task.Bound = true
		insp.Task.Cursor = (*Cursor)(nil)
	}
}

func cursorOf(insp *inspector.Inspector) *Cursor {
	c, _ := insp.Task.Cursor.(*Cursor)
	return c
}

func setCursor(insp *inspector.Inspector, c *Cursor) {
	insp.Task.Cursor = c
}
