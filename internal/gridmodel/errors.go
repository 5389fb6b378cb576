package gridmodel

import "fmt"

// InconsistencyError reports a precompute-stage conflict: two fixed blocks
// claiming the same (day, slot) cell, or a fixed block falling outside the
// broadcast day.
type InconsistencyError struct {
	Day       int
	Slot      int
	ProgramID string
	Reason    string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("gridmodel: precompute inconsistency at day=%d slot=%d program=%q: %s", e.Day, e.Slot, e.ProgramID, e.Reason)
}
