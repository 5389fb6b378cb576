package findomain

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/solver"
	"github.com/airtime/gridplanner/internal/timeband"
)

// Backend is the finite-domain solver.Backend implementation: chronological
// backtracking over each day's allowed starts, best-profit first, in place
// of an external Gecode process.
type Backend struct {
	// ParamFilePath, when set, is written with the serialized instance
	// before solving, exercising the external parameter-file interface.
	ParamFilePath string
}

// New constructs a findomain Backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "findomain" }

func (b *Backend) Solve(ctx context.Context, inst *solver.Instance, params solver.Params) (solver.Result, error) {
	if b.ParamFilePath != "" {
		if err := Serialize(inst, b.ParamFilePath); err != nil {
			return solver.Result{}, err
		}
	}

	deadline := time.Now().Add(time.Duration(params.TimeLimitSeconds * float64(time.Second)))
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	if _, infeasible := solver.QuotaCeiling(inst); infeasible {
		return solver.Result{Status: solver.StatusInfeasible, Objective: 0}, nil
	}

	week := make([][]solver.Start, timeband.Days)
	for d := 0; d < timeband.Days; d++ {
		starts, ok := backtrackDay(ctx, inst, d, nil)
		if !ok {
			return solver.Result{Status: solver.StatusInfeasible, Objective: 0}, nil
		}
		week[d] = starts
	}

	week = repairFrequency(ctx, inst, week)
	week = localRepair(ctx, inst, week)

	metrics := solver.Evaluate(inst, week)
	if !metrics.Feasible(inst.Pre) {
		return solver.Result{Status: solver.StatusUnknown, Objective: 0}, nil
	}

	starts := flatten(week)
	profit := totalProfit(inst, week)
	return solver.Result{
		Status:    solver.StatusFeasible,
		Starts:    starts,
		Objective: profit,
		BestBound: profit,
	}, nil
}

// backtrackDay performs chronological backtracking: at each free slot, try
// candidates best-score-first, recursing into the remainder of the day;
// backtrack on dead ends. Depth is bounded by SlotsPerDay/min-duration, so
// the search always terminates even without the deadline.
func backtrackDay(ctx context.Context, inst *solver.Instance, d int, excluded map[int]bool) ([]solver.Start, bool) {
	domain := make(map[int][]solver.Start)
	for _, st := range inst.StartsByDay[d] {
		if excluded != nil && excluded[st.Program] {
			continue
		}
		domain[st.Slot] = append(domain[st.Slot], st)
	}
	for s := range domain {
		sort.Slice(domain[s], func(i, j int) bool {
			pi := inst.Pre.Profit[gridmodel.DSP{Day: d, Slot: s, Program: domain[s][i].Program}]
			pj := inst.Pre.Profit[gridmodel.DSP{Day: d, Slot: s, Program: domain[s][j].Program}]
			return pi > pj
		})
	}

	var path []solver.Start
	var search func(slot int) bool
	search = func(slot int) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if slot >= timeband.SlotsPerDay {
			return true
		}
		for _, st := range domain[slot] {
			dur := inst.Pre.DurationSlots[st.Program]
			if slot+dur > timeband.SlotsPerDay {
				continue
			}
			path = append(path, st)
			if search(slot + dur) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}

	if !search(0) {
		return nil, false
	}
	return path, true
}

func repairFrequency(ctx context.Context, inst *solver.Instance, week [][]solver.Start) [][]solver.Start {
	excluded := make(map[int]bool)
	for iter := 0; iter < 8; iter++ {
		metrics := solver.Evaluate(inst, week)
		violators := solver.SeriesFrequencyViolations(inst.Pre, metrics)
		if len(violators) == 0 {
			break
		}
		changed := false
		for _, p := range violators {
			bestDay, bestProfit := -1, -1<<31
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
			for d := range week {
				if d != bestDay {
					excluded[p] = true
				}
			}
			changed = true
		}
		if !changed {
			break
		}
		newWeek := make([][]solver.Start, timeband.Days)
		ok := true
		for d := 0; d < timeband.Days; d++ {
			starts, dayOK := backtrackDay(ctx, inst, d, excluded)
			if !dayOK {
				ok = false
				break
			}
			newWeek[d] = starts
		}
		if !ok {
			break
		}
		week = newWeek
	}
	return week
}

// localRepair nudges budget/quota/variety/fiction/ad violations down via
// randomized single-slot substitutions, mirroring the cpsat backend's
// repair loop but kept independent so the two backends remain separately
// groundable implementations.
func localRepair(ctx context.Context, inst *solver.Instance, week [][]solver.Start) [][]solver.Start {
	rng := rand.New(rand.NewSource(1))
	best := week
	bestPenalty := solver.Penalty(inst.Pre, solver.Evaluate(inst, best))
	for bestPenalty > 0 {
		select {
		case <-ctx.Done():
			return best
		default:
		}
		candidate := mutate(inst, best, rng)
		penalty := solver.Penalty(inst.Pre, solver.Evaluate(inst, candidate))
		if penalty < bestPenalty {
			best = candidate
			bestPenalty = penalty
		} else {
			break
		}
	}
	return best
}

func mutate(inst *solver.Instance, week [][]solver.Start, rng *rand.Rand) [][]solver.Start {
	out := make([][]solver.Start, len(week))
	for d, s := range week {
		out[d] = append([]solver.Start{}, s...)
	}
	d := rng.Intn(timeband.Days)
	if len(out[d]) == 0 {
		return out
	}
	i := rng.Intn(len(out[d]))
	cur := out[d][i]
	if _, fixed := inst.FixedStart(d, cur.Slot); fixed {
		return out
	}
	alts := inst.CandidatesByCell[gridmodel.DS{Day: d, Slot: cur.Slot}]
	for _, p := range alts {
		if p != cur.Program && inst.Pre.DurationSlots[p] == inst.Pre.DurationSlots[cur.Program] {
			out[d][i] = solver.Start{Day: d, Slot: cur.Slot, Program: p}
			break
		}
	}
	return out
}

func flatten(week [][]solver.Start) []solver.Start {
	var all []solver.Start
	for _, s := range week {
		all = append(all, s...)
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

func totalProfit(inst *solver.Instance, week [][]solver.Start) int {
	total := 0
	for d, starts := range week {
		for _, st := range starts {
			total += inst.Pre.Profit[gridmodel.DSP{Day: d, Slot: st.Slot, Program: st.Program}]
		}
	}
	return total
}
