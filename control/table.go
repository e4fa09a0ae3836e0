package control

import (
	"sync"

	"github.com/rf-tools/chanspector/inspector"
)

// Table is the append-indexed inspector table: handles are stable for the
// process lifetime once assigned, and closing a handle leaves a tombstone
// rather than reusing the slot, so a stale handle in an in-flight response
// can never alias a newer inspector. Dispatch (the analyzer goroutine)
// registers and tombstones entries, while Sweep and CountByState may run
// from other goroutines (chaninspectord serve runs each on its own ticker);
// the mutex serializes every access to the entries slice.
type Table struct {
	mu      sync.Mutex
	entries []*inspector.Inspector // nil entry == tombstone
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Register appends insp to the table and returns its handle.
func (t *Table) Register(insp *inspector.Inspector) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, insp)
	return len(t.entries) - 1
}

// Tombstone replaces the entry at h with a tombstone, disposing of the
// handle without destroying the inspector itself (the caller does that).
func (t *Table) Tombstone(h int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h >= 0 && h < len(t.entries) {
		t.entries[h] = nil
	}
}

// Len reports the table's current length, including tombstoned slots.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// raw returns the entry at h with no state filtering, or nil if h is out of
// range or tombstoned.
func (t *Table) raw(h int) *inspector.Inspector {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h < 0 || h >= len(t.entries) {
		return nil
	}
	return t.entries[h]
}

// GetRunning returns the inspector at h iff the handle is in range, not
// tombstoned, and the inspector's state is Running. Any other condition
// yields nil.
func (t *Table) GetRunning(h int) *inspector.Inspector {
	insp := t.raw(h)
	if insp == nil || insp.State() != inspector.Running {
		return nil
	}
	return insp
}

// CountByState tallies the table's live (non-tombstoned) entries by
// lifecycle stage, for the periodic InspectorsByState gauge update
// (internal/telemetry) rather than maintaining counters at every individual
// transition site.
func (t *Table) CountByState() map[inspector.State]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	counts := make(map[inspector.State]int, 4)
	for _, insp := range t.entries {
		if insp == nil {
			continue
		}
		counts[insp.State()]++
	}
	return counts
}

// Sweep destroys every Halted entry's DSP state and tombstones its slot,
// so an inspector never has to wait for a second CLOSE on its handle to be
// reclaimed — without it, a client that closes a handle once and walks away
// leaks the inspector forever. It returns the number of entries reaped.
func (t *Table) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	reaped := 0
	for h, insp := range t.entries {
		if insp == nil || insp.State() != inspector.Halted {
			continue
		}
		insp.Destroy()
		t.entries[h] = nil
		reaped++
	}
	return reaped
}
