// Package legacy reimplements the greedy + local-search heuristic that
// predates the constraint-solver core. spec.md names it explicitly as
// peripheral/out-of-scope; it is kept here as an alternate, much cheaper
// scheduler for quick previews, grounded on
// original_source/airtime/optimizer.py, constraints.py, and audience.py.
package legacy

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/airtime/gridplanner/internal/catalog"
	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/timeband"
)

// ScheduledItem is one greedy-scheduler placement.
type ScheduledItem struct {
	Day       int
	StartSlot int
	Program   catalog.Program
	Audience  int
}

// Schedule is the legacy scheduler's output: one list of items per day.
type Schedule struct {
	Days [timeband.Days][]ScheduledItem
}

// TotalProfit sums ad revenue minus cost across the whole schedule, using
// the same band-based revenue formula as the precomputer.
func (s *Schedule) TotalProfit() int {
	total := 0
	for d := range s.Days {
		for _, item := range s.Days[d] {
			total += profitOf(item)
		}
	}
	return total
}

func profitOf(item ScheduledItem) int {
	band := timeband.BandForSlot(item.StartSlot)
	adMinutes := timeband.AdBreaksForProgram(item.Program.Genre, item.Program.DurationMinutes) * timeband.AdBreakMinutes
	revenue := int(float64(item.Audience) / 1000 * band.CPM * float64(adMinutes))
	return revenue - item.Program.Cost
}

// ComputeAudience estimates audience for program p starting at (d, s),
// applying an audience-heritage adjustment (+/-20% depending on how the
// previous program's audience compared to its own base audience) and a
// preferred-slot bonus, per original_source/airtime/audience.py.
func ComputeAudience(p catalog.Program, d, s int, previousAudience int, previousSlot int) int {
	band := timeband.BandForSlot(s)
	dayCoeff := timeband.DayCoefficient(d)
	base := float64(p.BaseAudience) * band.AudMult * dayCoeff

	if previousAudience > 0 && p.BaseAudience > 0 {
		ratio := float64(previousAudience) / float64(p.BaseAudience)
		switch {
		case ratio > 1.1:
			base *= 1.2
		case ratio < 0.9:
			base *= 0.8
		}
	}

	for _, pref := range p.PreferredSlots {
		if slot, ok := parseSlot(pref); ok && slot == s {
			base *= 1.05
			break
		}
	}

	return int(base)
}

func parseSlot(hhmm string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < timeband.ScheduleStartHour {
		h += 24
	}
	slot, err := timeband.SlotFromTime(h, m)
	if err != nil {
		return 0, false
	}
	return slot, true
}

// CheckRerunAllowed is the legacy scheduler's simpler rerun check: unlike
// the precomputer's per-genre default table, the greedy heuristic only
// respects an explicit min_rerun_days.
func CheckRerunAllowed(p catalog.Program, weekStart time.Time) bool {
	if p.LastBroadcastDate == nil || p.MinRerunDays == nil {
		return true
	}
	gapDays := int(weekStart.Sub(*p.LastBroadcastDate).Hours() / 24)
	return gapDays >= *p.MinRerunDays
}

// CheckSlotFits reports whether p fits within the day starting at slot s.
func CheckSlotFits(p catalog.Program, s int) bool {
	return s+timeband.DurationSlots(p.DurationMinutes) <= timeband.SlotsPerDay
}

// CheckFixedDay reports whether p may air on day d given its fixed_days.
func CheckFixedDay(p catalog.Program, d int) bool {
	if len(p.FixedDays) == 0 {
		return true
	}
	for _, fd := range p.FixedDays {
		if fd == d {
			return true
		}
	}
	return false
}

// CheckUniquePerWeek reports whether programID has not yet been used this
// week in used.
func CheckUniquePerWeek(used map[string]bool, programID string) bool {
	return !used[programID]
}

// CheckSeriesMaxPerWeek enforces max_episodes_per_week for series programs.
func CheckSeriesMaxPerWeek(p catalog.Program, usedCount int) bool {
	if p.MaxEpisodesPerWeek == nil {
		return usedCount < 1
	}
	return usedCount < *p.MaxEpisodesPerWeek
}

// IsEligible runs the legacy scheduler's lighter-weight eligibility chain.
func IsEligible(p catalog.Program, weekStart time.Time, d, s int, used map[string]bool, seriesCount map[string]int) bool {
	if !CheckSlotFits(p, s) {
		return false
	}
	if !CheckFixedDay(p, d) {
		return false
	}
	if !CheckRerunAllowed(p, weekStart) {
		return false
	}
	if p.Genre == gridmodel.GenreSerie {
		if !CheckSeriesMaxPerWeek(p, seriesCount[p.ID]) {
			return false
		}
	} else if !CheckUniquePerWeek(used, p.ID) {
		return false
	}
	return true
}

// GreedySchedule fills every day slot-by-slot with the highest-audience
// eligible program, in the style of original_source/airtime/optimizer.py's
// greedy_schedule.
func GreedySchedule(programs []catalog.Program, weekStart time.Time) Schedule {
	var sched Schedule
	used := make(map[string]bool)
	seriesCount := make(map[string]int)
	previousAudience := make(map[int]int) // day -> last program's audience
	previousSlot := make(map[int]int)

	for d := 0; d < timeband.Days; d++ {
		s := 0
		for s < timeband.SlotsPerDay {
			var bestProg *catalog.Program
			bestAudience := -1
			for i := range programs {
				p := &programs[i]
				if !IsEligible(*p, weekStart, d, s, used, seriesCount) {
					continue
				}
				aud := ComputeAudience(*p, d, s, previousAudience[d], previousSlot[d])
				if aud > bestAudience {
					bestAudience = aud
					bestProg = p
				}
			}
			if bestProg == nil {
				// No program fits the remainder of the day; stop, leaving
				// a gap the caller may want to fill with filler content.
				break
			}
			sched.Days[d] = append(sched.Days[d], ScheduledItem{Day: d, StartSlot: s, Program: *bestProg, Audience: bestAudience})
			if bestProg.Genre == gridmodel.GenreSerie {
				seriesCount[bestProg.ID]++
			} else {
				used[bestProg.ID] = true
			}
			previousAudience[d] = bestAudience
			previousSlot[d] = s
			s += timeband.DurationSlots(bestProg.DurationMinutes)
		}
	}
	return sched
}

// LocalSearch runs a bounded number of random single-swap perturbations,
// keeping any swap that improves total profit, in the style of
// original_source/airtime/optimizer.py's local_search.
func LocalSearch(sched Schedule, programs []catalog.Program, iterations int, seed int64) Schedule {
	rng := rand.New(rand.NewSource(seed))
	best := sched
	bestProfit := best.TotalProfit()

	for iter := 0; iter < iterations; iter++ {
		d := rng.Intn(timeband.Days)
		if len(best.Days[d]) == 0 {
			continue
		}
		i := rng.Intn(len(best.Days[d]))
		candidate := cloneSchedule(best)
		item := candidate.Days[d][i]

		replacement := programs[rng.Intn(len(programs))]
		if timeband.DurationSlots(replacement.DurationMinutes) != timeband.DurationSlots(item.Program.DurationMinutes) {
			continue
		}
		item.Program = replacement
		item.Audience = ComputeAudience(replacement, d, item.StartSlot, 0, 0)
		candidate.Days[d][i] = item

		profit := candidate.TotalProfit()
		if profit > bestProfit {
			best = candidate
			bestProfit = profit
		}
	}
	return best
}

func cloneSchedule(s Schedule) Schedule {
	var out Schedule
	for d := range s.Days {
		out.Days[d] = append([]ScheduledItem{}, s.Days[d]...)
	}
	return out
}
