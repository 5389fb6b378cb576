// Package findomain implements the alternate, finite-domain solver backend
// of spec.md §4.2/§6. It serializes the reduced instance to a dense-array
// parameter file — the Go analog of original_source/airtime's
// minizinc_solver.py writing a .dzn model for gecode — and solves with a
// chronological backtracking engine that tries candidates best-profit first
// (no propagation), since no MiniZinc/Gecode binding exists in the example
// corpus.
package findomain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/solver"
	"github.com/airtime/gridplanner/internal/timeband"
)

// ParamFile is the dense-array serialization of an Instance, per spec.md §6.
type ParamFile struct {
	D int `json:"D"`
	S int `json:"S"`
	P int `json:"P"`

	WeeklyBudget    int `json:"weekly_budget"`
	TotalMinutes    int `json:"total_minutes"`
	MinEUPercent    int `json:"min_eu_percent"`
	MinFRPercent    int `json:"min_fr_percent"`

	DurSlots []int `json:"dur_slots"` // length P, indexed by program
	DurMin   []int `json:"dur_min"`
	Cost     []int `json:"cost"`
	IsEU     []int `json:"is_eu"`
	IsFR     []int `json:"is_fr"`

	FixedProg [][]int   `json:"fixed_prog"` // D x S, 1-based program id, 0 = none
	Allowed   [][][]int `json:"allowed"`    // D x S x P, 0/1
	Score     [][][]int `json:"score"`      // D x S x P, profit
}

// Serialize converts inst into the dense-array parameter file format and
// writes it to path.
func Serialize(inst *solver.Instance, path string) error {
	pre := inst.Pre
	P := len(pre.Programs)

	pf := ParamFile{
		D: timeband.Days,
		S: timeband.SlotsPerDay,
		P: P,
		WeeklyBudget: timeband.WeeklyBudget,
		TotalMinutes: timeband.TotalWeeklyMinutes,
		MinEUPercent: timeband.MinEuropeanPercent,
		MinFRPercent: timeband.MinFrenchPercent,
		DurSlots:     make([]int, P),
		DurMin:       make([]int, P),
		Cost:         make([]int, P),
		IsEU:         make([]int, P),
		IsFR:         make([]int, P),
	}
	for i, prog := range pre.Programs {
		pf.DurSlots[i] = pre.DurationSlots[i]
		pf.DurMin[i] = prog.DurationMinutes
		pf.Cost[i] = prog.Cost
		pf.IsEU[i] = boolToInt(pre.IsEuropean[i])
		pf.IsFR[i] = boolToInt(pre.IsFrench[i])
	}

	pf.FixedProg = make([][]int, timeband.Days)
	pf.Allowed = make([][][]int, timeband.Days)
	pf.Score = make([][][]int, timeband.Days)
	for d := 0; d < timeband.Days; d++ {
		pf.FixedProg[d] = make([]int, timeband.SlotsPerDay)
		pf.Allowed[d] = make([][]int, timeband.SlotsPerDay)
		pf.Score[d] = make([][]int, timeband.SlotsPerDay)
		for s := 0; s < timeband.SlotsPerDay; s++ {
			pf.Allowed[d][s] = make([]int, P)
			pf.Score[d][s] = make([]int, P)
			if prog, ok := pre.FixedStart[gridmodel.DS{Day: d, Slot: s}]; ok {
				pf.FixedProg[d][s] = prog + 1
			}
			for _, p := range pre.AllowedStarts[gridmodel.DS{Day: d, Slot: s}] {
				pf.Allowed[d][s][p] = 1
				pf.Score[d][s][p] = pre.Profit[gridmodel.DSP{Day: d, Slot: s, Program: p}]
			}
		}
	}

	raw, err := json.Marshal(pf)
	if err != nil {
		return fmt.Errorf("findomain: marshal parameter file: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
