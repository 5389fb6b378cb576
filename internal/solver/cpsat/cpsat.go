// Package cpsat implements the primary solver backend. spec.md models the
// problem for a true CP-SAT engine; no such library exists anywhere in the
// example corpus (see DESIGN.md), so this backend reproduces the same
// decomposition — per-day coverage as a tiling DP, cross-day constraints
// repaired by a parallel, deadline-bound local search — as a from-scratch
// substitute. Search workers run as goroutines over shared,
// read-only instance data, mirroring OR-Tools' num_search_workers.
package cpsat

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/solver"
	"github.com/airtime/gridplanner/internal/timeband"
)

// Backend is the cpsat solver.Backend implementation.
type Backend struct{}

// New constructs a cpsat Backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "cpsat" }

// Solve runs the tiling-DP + local-search engine within the given deadline.
func (b *Backend) Solve(ctx context.Context, inst *solver.Instance, params solver.Params) (solver.Result, error) {
	deadline := time.Now().Add(time.Duration(params.TimeLimitSeconds * float64(time.Second)))
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	if _, infeasible := solver.QuotaCeiling(inst); infeasible {
		return solver.Result{Status: solver.StatusInfeasible, Objective: 0}, nil
	}

	week, ok := solveAllDays(inst, nil)
	if !ok {
		return solver.Result{Status: solver.StatusInfeasible, Objective: 0}, nil
	}
	upperBound := weekProfit(inst, week)

	week = resolveFrequencyConflicts(inst, week)
	week = applyHints(inst, week, params.Hints)

	workers := params.Workers
	if workers < 1 {
		workers = 1
	}

	type candidate struct {
		week    [][]solver.Start
		penalty float64
		profit  int
	}

	best := candidate{week: week, penalty: penaltyOf(inst, week), profit: weekProfit(inst, week)}

	results := make(chan candidate, workers)
	for w := 0; w < workers; w++ {
		seed := int64(w*7919 + 1)
		go func(seed int64) {
			local := cloneWeek(week)
			rng := rand.New(rand.NewSource(seed))
			localBest := candidate{week: cloneWeek(local), penalty: penaltyOf(inst, local), profit: weekProfit(inst, local)}

			for {
				select {
				case <-ctx.Done():
					results <- localBest
					return
				default:
				}
				mutated := perturb(inst, local, rng)
				mp := penaltyOf(inst, mutated)
				mProfit := weekProfit(inst, mutated)
				if better(mp, mProfit, localBest.penalty, localBest.profit) {
					localBest = candidate{week: cloneWeek(mutated), penalty: mp, profit: mProfit}
					local = mutated
				} else if rng.Float64() < 0.05 {
					local = mutated
				}
				if localBest.penalty == 0 {
					results <- localBest
					return
				}
			}
		}(seed)
	}

	for w := 0; w < workers; w++ {
		cand := <-results
		if better(cand.penalty, cand.profit, best.penalty, best.profit) {
			best = cand
		}
	}

	if best.penalty > 0 {
		return solver.Result{Status: solver.StatusUnknown, Objective: 0}, nil
	}

	starts := flattenWeek(best.week)
	status := solver.StatusFeasible
	if upperBound > 0 {
		gap := float64(upperBound-best.profit) / float64(upperBound)
		if gap <= params.RelativeGap {
			status = solver.StatusOptimal
		}
	}

	return solver.Result{
		Status:    status,
		Starts:    starts,
		Objective: best.profit,
		BestBound: upperBound,
	}, nil
}

func better(penaltyA float64, profitA int, penaltyB float64, profitB int) bool {
	if penaltyA != penaltyB {
		return penaltyA < penaltyB
	}
	return profitA > profitB
}

func penaltyOf(inst *solver.Instance, week [][]solver.Start) float64 {
	return solver.Penalty(inst.Pre, solver.Evaluate(inst, week))
}

func weekProfit(inst *solver.Instance, week [][]solver.Start) int {
	total := 0
	for d, starts := range week {
		for _, st := range starts {
			total += inst.Pre.Profit[gridmodel.DSP{Day: d, Slot: st.Slot, Program: st.Program}]
		}
	}
	return total
}

func cloneWeek(week [][]solver.Start) [][]solver.Start {
	out := make([][]solver.Start, len(week))
	for d, s := range week {
		out[d] = append([]solver.Start{}, s...)
	}
	return out
}

func flattenWeek(week [][]solver.Start) []solver.Start {
	var all []solver.Start
	for _, starts := range week {
		all = append(all, starts...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Day != all[j].Day {
			return all[i].Day < all[j].Day
		}
		if all[i].Slot != all[j].Slot {
			return all[i].Slot < all[j].Slot
		}
		return all[i].Program < all[j].Program
	})
	return all
}

// solveAllDays runs the per-day tiling DP for every day, excluding any
// program index present in excluded.
func solveAllDays(inst *solver.Instance, excluded map[int]bool) ([][]solver.Start, bool) {
	week := make([][]solver.Start, timeband.Days)
	for d := 0; d < timeband.Days; d++ {
		starts, ok := solveDay(inst, d, excluded)
		if !ok {
			return nil, false
		}
		week[d] = starts
	}
	return week, true
}

// solveDay is a weighted interval-tiling DP: dp[s] is the best achievable
// profit covering slots s..239, choosing exactly one program to start at
// s (or, if nothing may start at s, the day cannot be tiled).
func solveDay(inst *solver.Instance, d int, excluded map[int]bool) ([]solver.Start, bool) {
	byStart := make(map[int][]solver.Start)
	for _, st := range inst.StartsByDay[d] {
		if excluded != nil && excluded[st.Program] {
			continue
		}
		byStart[st.Slot] = append(byStart[st.Slot], st)
	}

	const negInf = math.MinInt32
	dp := make([]int, timeband.SlotsPerDay+1)
	choice := make([]solver.Start, timeband.SlotsPerDay+1)
	hasChoice := make([]bool, timeband.SlotsPerDay+1)
	dp[timeband.SlotsPerDay] = 0

	for s := timeband.SlotsPerDay - 1; s >= 0; s-- {
		dp[s] = negInf
		for _, st := range byStart[s] {
			dur := inst.Pre.DurationSlots[st.Program]
			next := s + dur
			if next > timeband.SlotsPerDay || dp[next] == negInf {
				continue
			}
			profit := inst.Pre.Profit[gridmodel.DSP{Day: d, Slot: s, Program: st.Program}]
			total := profit + dp[next]
			if total > dp[s] {
				dp[s] = total
				choice[s] = st
				hasChoice[s] = true
			}
		}
	}

	if dp[0] == negInf {
		return nil, false
	}

	var starts []solver.Start
	s := 0
	for s < timeband.SlotsPerDay {
		if !hasChoice[s] {
			return nil, false
		}
		st := choice[s]
		starts = append(starts, st)
		s += inst.Pre.DurationSlots[st.Program]
	}
	return starts, true
}

// resolveFrequencyConflicts keeps the highest-profit airing of each
// series-genre program used more than once and re-solves the other days
// with it excluded.
func resolveFrequencyConflicts(inst *solver.Instance, week [][]solver.Start) [][]solver.Start {
	excluded := make([]map[int]bool, timeband.Days)
	for d := range excluded {
		excluded[d] = make(map[int]bool)
	}
	for iter := 0; iter < 8; iter++ {
		metrics := solver.Evaluate(inst, week)
		violators := solver.SeriesFrequencyViolations(inst.Pre, metrics)
		if len(violators) == 0 {
			break
		}
		for _, p := range violators {
			bestDay, bestProfit := -1, math.MinInt32
			for d, starts := range week {
				for _, st := range starts {
					if st.Program != p {
						continue
					}
					pr := inst.Pre.Profit[gridmodel.DSP{Day: d, Slot: st.Slot, Program: p}]
					if pr > bestProfit {
						bestProfit, bestDay = pr, d
					}
				}
			}
			for d := range excluded {
				if d != bestDay {
					excluded[d][p] = true
				}
			}
		}
		newWeek := make([][]solver.Start, timeband.Days)
		ok := true
		for d := 0; d < timeband.Days && ok; d++ {
			newWeek[d], ok = solveDay(inst, d, excluded[d])
		}
		if !ok {
			break
		}
		week = newWeek
	}
	return week
}

// applyHints replaces each day whose hinted starts form a valid tiling with
// those starts, so the local search begins from the hinted week; days whose
// hints do not tile keep their DP tiling.
func applyHints(inst *solver.Instance, week [][]solver.Start, hints []solver.Start) [][]solver.Start {
	if len(hints) == 0 {
		return week
	}
	byDay := make([][]solver.Start, timeband.Days)
	for _, h := range hints {
		byDay[h.Day] = append(byDay[h.Day], h)
	}
	for d := range byDay {
		sort.Slice(byDay[d], func(i, j int) bool { return byDay[d][i].Slot < byDay[d][j].Slot })
		if isValidTiling(inst, d, byDay[d]) {
			week[d] = byDay[d]
		}
	}
	return week
}

func isValidTiling(inst *solver.Instance, d int, starts []solver.Start) bool {
	if len(starts) == 0 {
		return false
	}
	expected := 0
	for _, st := range starts {
		if st.Slot != expected {
			return false
		}
		expected += inst.Pre.DurationSlots[st.Program]
	}
	return expected == timeband.SlotsPerDay
}

// perturb proposes a neighboring week by swapping one day's chosen start at
// a random slot for another allowed candidate at the same slot with the
// same duration, keeping the day a valid tiling.
func perturb(inst *solver.Instance, week [][]solver.Start, rng *rand.Rand) [][]solver.Start {
	out := cloneWeek(week)
	d := rng.Intn(timeband.Days)
	starts := out[d]
	if len(starts) == 0 {
		return out
	}
	i := rng.Intn(len(starts))
	cur := starts[i]
	cell := gridmodel.DS{Day: d, Slot: cur.Slot}
	alts := inst.CandidatesByCell[cell]
	var sameDuration []int
	for _, p := range alts {
		if p != cur.Program && inst.Pre.DurationSlots[p] == inst.Pre.DurationSlots[cur.Program] {
			sameDuration = append(sameDuration, p)
		}
	}
	if len(sameDuration) == 0 {
		return out
	}
	choice := sameDuration[rng.Intn(len(sameDuration))]
	if _, fixed := inst.FixedStart(d, cur.Slot); fixed {
		return out
	}
	starts[i] = solver.Start{Day: d, Slot: cur.Slot, Program: choice}
	return out
}
