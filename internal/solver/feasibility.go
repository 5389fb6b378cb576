package solver

import (
	"fmt"
	"math"

	"github.com/airtime/gridplanner/internal/timeband"
)

// QuotaCeiling checks the linear weekly-minutes floors (European, French)
// against the best this catalog could ever achieve, independent of budget,
// variety or frequency. Unlike the per-day tiling search, which only
// detects infeasibility when a single day cannot be tiled at all, a catalog
// that tiles every day fine but can never reach a legal quota (e.g. a week
// of entirely non-European programs against the 60% European-minutes
// floor) would otherwise run the local search to the deadline and report
// UNKNOWN. Computing the achievable ceiling up front lets that case report
// INFEASIBLE instead.
func QuotaCeiling(inst *Instance) (reason string, infeasible bool) {
	euroCeiling, ok := maxAchievableWeight(inst, func(p int) int {
		if inst.Pre.IsEuropean[p] {
			return inst.Pre.DurationSlots[p] * timeband.SlotMinutes
		}
		return 0
	})
	if !ok {
		return "", false // per-day tiling will report INFEASIBLE on its own
	}
	floor := float64(timeband.MinEuropeanPercent) / 100 * float64(timeband.TotalWeeklyMinutes)
	if float64(euroCeiling) < floor {
		return fmt.Sprintf("catalog can provide at most %d European minutes this week, below the %d%% floor (%.0f minutes)",
			euroCeiling, timeband.MinEuropeanPercent, floor), true
	}

	frenchCeiling, ok := maxAchievableWeight(inst, func(p int) int {
		if inst.Pre.IsFrench[p] {
			return inst.Pre.DurationSlots[p] * timeband.SlotMinutes
		}
		return 0
	})
	if !ok {
		return "", false
	}
	floor = float64(timeband.MinFrenchPercent) / 100 * float64(timeband.TotalWeeklyMinutes)
	if float64(frenchCeiling) < floor {
		return fmt.Sprintf("catalog can provide at most %d French-origin minutes this week, below the %d%% floor (%.0f minutes)",
			frenchCeiling, timeband.MinFrenchPercent, floor), true
	}

	return "", false
}

// maxAchievableWeight sums, across every day independently, the best
// achievable total of weight(program) over a full tiling of that day. Each
// day is optimized separately via the same interval DP the backends use
// for profit, so the result is an upper bound on what any full-week
// assignment (subject to budget, frequency, variety, ...) could reach.
func maxAchievableWeight(inst *Instance, weight func(program int) int) (int, bool) {
	total := 0
	for d := 0; d < timeband.Days; d++ {
		best, ok := bestDayWeight(inst, d, weight)
		if !ok {
			return 0, false
		}
		total += best
	}
	return total, true
}

func bestDayWeight(inst *Instance, d int, weight func(program int) int) (int, bool) {
	byStart := make(map[int][]Start)
	for _, st := range inst.StartsByDay[d] {
		byStart[st.Slot] = append(byStart[st.Slot], st)
	}

	const negInf = math.MinInt32
	dp := make([]int, timeband.SlotsPerDay+1)
	dp[timeband.SlotsPerDay] = 0

	for s := timeband.SlotsPerDay - 1; s >= 0; s-- {
		dp[s] = negInf
		for _, st := range byStart[s] {
			dur := inst.Pre.DurationSlots[st.Program]
			next := s + dur
			if next > timeband.SlotsPerDay || dp[next] == negInf {
				continue
			}
			if total := weight(st.Program) + dp[next]; total > dp[s] {
				dp[s] = total
			}
		}
	}

	if dp[0] == negInf {
		return 0, false
	}
	return dp[0], true
}
