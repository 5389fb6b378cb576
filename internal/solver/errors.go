package solver

import "fmt"

// ModelBuildError reports a fixed program missing from its own pinned cell's
// candidate list — meaning some eligibility rule filtered away the very
// program the catalog pins there. spec.md §7 calls this out by name so the
// operator can identify the offending rule.
type ModelBuildError struct {
	Day        int
	Slot       int
	ProgramID  string
	LikelyRule string
}

func (e *ModelBuildError) Error() string {
	return fmt.Sprintf("solver: model-build error: fixed program %q at day=%d slot=%d has no candidate in allowed_starts (likely excluded by: %s)", e.ProgramID, e.Day, e.Slot, e.LikelyRule)
}
