// Package solver defines the backend-agnostic instance and result types
// consumed by internal/solver/cpsat and internal/solver/findomain, and the
// driver that walks the constraint-builder state machine of spec.md §4.2.
package solver

import (
	"sort"

	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/timeband"
)

// Start identifies a chosen (day, start-slot, program) triple.
type Start struct {
	Day     int
	Slot    int
	Program int
}

// Instance is the reduced, solver-facing view of a gridmodel.Precomputed:
// every decision variable x[d,s,p] that the builder would emit, plus the
// precomputed covers index needed for the coverage and advertising
// constraints.
type Instance struct {
	Pre *gridmodel.Precomputed

	// Covers[DS{d,t}] lists every (s,p) start whose occupied span includes
	// slot t on day d — the "covers" index of spec.md §4.2.
	Covers map[gridmodel.DS][]Start

	// StartsByDay[d] lists every (slot, program) pair eligible to start on
	// day d, sorted by slot then program, for deterministic iteration.
	// Candidates whose span would cross over a fixed (day, slot) cell
	// without starting exactly there are excluded: such a candidate would
	// silently bury the pinned block inside its own running time.
	StartsByDay [][]Start

	// CandidatesByCell mirrors Pre.AllowedStarts but with the same
	// crosses-a-fixed-cell candidates removed as StartsByDay, so any code
	// picking a replacement program for an already-chosen slot (the local
	// search perturbation step) can never introduce that violation either.
	CandidatesByCell map[gridmodel.DS][]int
}

// BuildInstance constructs the solver Instance from a Precomputed grid.
func BuildInstance(pre *gridmodel.Precomputed) *Instance {
	inst := &Instance{
		Pre:              pre,
		Covers:           make(map[gridmodel.DS][]Start),
		StartsByDay:      make([][]Start, timeband.Days),
		CandidatesByCell: make(map[gridmodel.DS][]int),
	}

	for cell, progs := range pre.AllowedStarts {
		d, s := cell.Day, cell.Slot
		for _, p := range progs {
			dur := pre.DurationSlots[p]
			if crossesFixedCell(pre, d, s, dur) {
				continue
			}

			start := Start{Day: d, Slot: s, Program: p}
			inst.StartsByDay[d] = append(inst.StartsByDay[d], start)
			inst.CandidatesByCell[cell] = append(inst.CandidatesByCell[cell], p)

			for t := s; t < s+dur && t < timeband.SlotsPerDay; t++ {
				key := gridmodel.DS{Day: d, Slot: t}
				inst.Covers[key] = append(inst.Covers[key], start)
			}
		}
	}

	for d := range inst.StartsByDay {
		sort.Slice(inst.StartsByDay[d], func(a, b int) bool {
			sa, sb := inst.StartsByDay[d][a], inst.StartsByDay[d][b]
			if sa.Slot != sb.Slot {
				return sa.Slot < sb.Slot
			}
			return sa.Program < sb.Program
		})
	}

	return inst
}

// crossesFixedCell reports whether a program starting at slot s and running
// dur slots on day d would cover some other slot pinned by FixedStart
// without itself starting there. Such a candidate would let a long program
// silently absorb a mandatory fixed block instead of yielding the slot to
// it, which spec.md §3 forbids: every fixed block must appear exactly at
// its pinned (d, s).
func crossesFixedCell(pre *gridmodel.Precomputed, d, s, dur int) bool {
	for t := s + 1; t < s+dur && t < timeband.SlotsPerDay; t++ {
		if _, ok := pre.FixedStart[gridmodel.DS{Day: d, Slot: t}]; ok {
			return true
		}
	}
	return false
}

// VariableCount returns the number of x[d,s,p] decision variables, i.e. the
// allowed starts kept in StartsByDay, which leaves out candidates that would
// run across a pinned cell.
func (inst *Instance) VariableCount() int {
	n := 0
	for _, starts := range inst.StartsByDay {
		n += len(starts)
	}
	return n
}

// FixedStart reports whether (d, s) is pinned, and to which program.
func (inst *Instance) FixedStart(d, s int) (int, bool) {
	p, ok := inst.Pre.FixedStart[gridmodel.DS{Day: d, Slot: s}]
	return p, ok
}
