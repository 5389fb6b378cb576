// Package gridmodel turns a raw program catalog into a Precomputed
// instance: per-program derived attributes, per-(day, slot) candidate
// lists, and per-(day, slot, program) audience/profit coefficients. It is
// the precomputation stage of spec.md §4.1.
package gridmodel

import (
	"sort"
	"time"

	"github.com/airtime/gridplanner/internal/catalog"
	"github.com/airtime/gridplanner/internal/observability"
	"github.com/airtime/gridplanner/internal/timeband"
)

// DS identifies a (day, slot) cell.
type DS struct {
	Day  int
	Slot int
}

// DSP identifies a (day, slot, program) candidate triple.
type DSP struct {
	Day     int
	Slot    int
	Program int
}

// Precomputed is the read-only instance consumed by the solver. All slices
// are indexed by program index into Programs; all maps use the zero value
// (absence) to mean "not applicable" rather than an explicit sentinel.
type Precomputed struct {
	Programs  []catalog.Program
	ProgIndex map[string]int
	WeekStart time.Time

	DurationSlots []int
	IsEuropean    []bool
	IsFrench      []bool
	IsIndependent []bool
	GenreName     []string
	GenreID       []int
	IsFiction     []bool
	AdRateMilli   []int

	GenreIDs map[string]int // genre name -> dense id, in first-seen order

	FixedStart    map[DS]int
	AllowedStarts map[DS][]int

	Audience map[DSP]int
	Profit   map[DSP]int
	Revenue  map[DSP]int
}

// jtBaseAudience is the base audience of the synthesized news blocks; like
// any program's, it is scaled by the band and day multipliers.
const jtBaseAudience = 4_000_000

// jtDurationMinutes is the length of each JT+Météo pseudo-program.
const jtDurationMinutes = 40

// injectNewsBlocks appends the two fixed JT+Météo pseudo-programs to the
// catalog, pinned to every day at 13:00 and 20:00.
func injectNewsBlocks(programs []catalog.Program) []catalog.Program {
	allDays := []int{0, 1, 2, 3, 4, 5, 6}
	midday := "13:00"
	evening := "20:00"
	return append(append([]catalog.Program{}, programs...),
		catalog.Program{
			ID:              "jt-1300",
			Title:           "JT+Météo 13:00",
			Genre:           GenreActualites,
			Subgenre:        "JT",
			DurationMinutes: jtDurationMinutes,
			Cost:            0,
			BaseAudience:    jtBaseAudience,
			Origin:          "France",
			FixedTime:       &midday,
			FixedDays:       allDays,
		},
		catalog.Program{
			ID:              "jt-2000",
			Title:           "JT+Météo 20:00",
			Genre:           GenreActualites,
			Subgenre:        "JT",
			DurationMinutes: jtDurationMinutes,
			Cost:            0,
			BaseAudience:    jtBaseAudience,
			Origin:          "France",
			FixedTime:       &evening,
			FixedDays:       allDays,
		},
	)
}

// Build runs the full precomputation pipeline over programs for the given
// target week.
func Build(programs []catalog.Program, weekStart time.Time, metrics observability.MetricsRegistry) (*Precomputed, error) {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}

	withBlocks := injectNewsBlocks(programs)

	pre := &Precomputed{
		Programs:      withBlocks,
		ProgIndex:     make(map[string]int, len(withBlocks)),
		WeekStart:     weekStart,
		DurationSlots: make([]int, len(withBlocks)),
		IsEuropean:    make([]bool, len(withBlocks)),
		IsFrench:      make([]bool, len(withBlocks)),
		IsIndependent: make([]bool, len(withBlocks)),
		GenreName:     make([]string, len(withBlocks)),
		GenreID:       make([]int, len(withBlocks)),
		IsFiction:     make([]bool, len(withBlocks)),
		AdRateMilli:   make([]int, len(withBlocks)),
		GenreIDs:      make(map[string]int),
		FixedStart:    make(map[DS]int),
		AllowedStarts: make(map[DS][]int),
		Audience:      make(map[DSP]int),
		Profit:        make(map[DSP]int),
		Revenue:       make(map[DSP]int),
	}

	for i, p := range withBlocks {
		pre.ProgIndex[p.ID] = i
		pre.DurationSlots[i] = timeband.DurationSlots(p.DurationMinutes)
		pre.IsFrench[i] = p.Origin == "France"
		pre.IsEuropean[i] = pre.IsFrench[i] || EuropeOrigins[p.Origin]
		pre.IsIndependent[i] = p.Independent
		pre.GenreName[i] = p.Genre
		pre.IsFiction[i] = FictionGenres[p.Genre]
		pre.AdRateMilli[i] = timeband.AdRateMilli(p.Genre, p.DurationMinutes)

		if id, ok := pre.GenreIDs[p.Genre]; ok {
			pre.GenreID[i] = id
		} else {
			id := len(pre.GenreIDs)
			pre.GenreIDs[p.Genre] = id
			pre.GenreID[i] = id
		}
	}

	if err := buildFixedStarts(pre); err != nil {
		return nil, err
	}

	buildAllowedStartsAndCoefficients(pre)

	dropped := capCandidates(pre)
	metrics.AddCandidatesDropped(dropped)

	total := 0
	for _, ps := range pre.AllowedStarts {
		total += len(ps)
	}
	metrics.SetVariablesBuilt(total)

	return pre, nil
}

// buildFixedStarts resolves fixed_time/fixed_days into FixedStart entries,
// detecting two programs claiming the same cell.
func buildFixedStarts(pre *Precomputed) error {
	for i, p := range pre.Programs {
		if p.FixedTime == nil {
			continue
		}
		slot, ok := parseHHMMSlot(*p.FixedTime)
		if !ok {
			return &InconsistencyError{ProgramID: p.ID, Reason: "fixed_time is not a valid HH:MM"}
		}
		if slot < 0 || slot >= timeband.SlotsPerDay {
			return &InconsistencyError{ProgramID: p.ID, Slot: slot, Reason: "fixed_time falls outside 06:00-02:00"}
		}

		days := p.FixedDays
		if len(days) == 0 {
			days = []int{0, 1, 2, 3, 4, 5, 6}
		}
		for _, d := range days {
			key := DS{Day: d, Slot: slot}
			if existing, ok := pre.FixedStart[key]; ok && existing != i {
				return &InconsistencyError{
					Day: d, Slot: slot, ProgramID: p.ID,
					Reason: "cell already pinned to program " + pre.Programs[existing].ID,
				}
			}
			pre.FixedStart[key] = i
		}
	}
	return nil
}

// buildAllowedStartsAndCoefficients runs the eligibility chain for every
// (day, slot, program) triple and records the surviving candidates along
// with their audience/profit coefficients.
func buildAllowedStartsAndCoefficients(pre *Precomputed) {
	for d := 0; d < timeband.Days; d++ {
		dayCoeff := timeband.DayCoefficient(d)
		for s := 0; s < timeband.SlotsPerDay; s++ {
			key := DS{Day: d, Slot: s}
			fixedProg, isFixedCell := pre.FixedStart[key]

			var candidates []int
			for i, p := range pre.Programs {
				if isFixedCell && i != fixedProg {
					continue
				}
				// A pinned program airs only at its pinned cells.
				if !isFixedCell && p.FixedTime != nil {
					continue
				}
				durSlots := pre.DurationSlots[i]
				if !isFixedCell && !eligible(p, pre.WeekStart, d, s, durSlots) {
					continue
				}
				if isFixedCell && !filterFit(s, durSlots) {
					continue
				}

				band := timeband.BandForSlot(s)
				audience := int(float64(p.BaseAudience) * band.AudMult * dayCoeff)
				adMinutes := timeband.AdBreaksForProgram(p.Genre, p.DurationMinutes) * timeband.AdBreakMinutes
				revenue := int(float64(audience) / 1000 * band.CPM * float64(adMinutes))
				profit := revenue - p.Cost

				candidates = append(candidates, i)
				dsp := DSP{Day: d, Slot: s, Program: i}
				pre.Audience[dsp] = audience
				pre.Revenue[dsp] = revenue
				pre.Profit[dsp] = profit
			}
			if len(candidates) > 0 {
				pre.AllowedStarts[key] = candidates
			}
		}
	}
}

// capCandidates applies the diversified-reduction cap to every cell holding
// more than MaxCandidatesPerSlot candidates, returning the number dropped.
func capCandidates(pre *Precomputed) int {
	dropped := 0
	for key, candidates := range pre.AllowedStarts {
		if len(candidates) <= timeband.MaxCandidatesPerSlot {
			continue
		}
		kept := diversifiedReduce(pre, key, candidates)
		for _, i := range candidates {
			if !containsInt(kept, i) {
				delete(pre.Audience, DSP{Day: key.Day, Slot: key.Slot, Program: i})
				delete(pre.Revenue, DSP{Day: key.Day, Slot: key.Slot, Program: i})
				delete(pre.Profit, DSP{Day: key.Day, Slot: key.Slot, Program: i})
				dropped++
			}
		}
		pre.AllowedStarts[key] = kept
	}
	return dropped
}

// diversifiedReduce implements the candidate-capping algorithm of
// spec.md §4.1: per genre, keep the two highest-audience entries and the
// lowest-cost entry; fill remaining slots by global descending audience;
// force-include any fixed program for the cell.
func diversifiedReduce(pre *Precomputed, key DS, candidates []int) []int {
	byGenre := make(map[string][]int)
	for _, i := range candidates {
		g := pre.GenreName[i]
		byGenre[g] = append(byGenre[g], i)
	}

	kept := make(map[int]bool)
	for _, idxs := range byGenre {
		sort.Slice(idxs, func(a, b int) bool {
			return pre.Audience[DSP{key.Day, key.Slot, idxs[a]}] > pre.Audience[DSP{key.Day, key.Slot, idxs[b]}]
		})
		for i := 0; i < len(idxs) && i < 2; i++ {
			kept[idxs[i]] = true
		}
		cheapest := idxs[0]
		for _, i := range idxs {
			if pre.Programs[i].Cost < pre.Programs[cheapest].Cost {
				cheapest = i
			}
		}
		kept[cheapest] = true
	}

	remaining := make([]int, 0, len(candidates))
	for _, i := range candidates {
		if !kept[i] {
			remaining = append(remaining, i)
		}
	}
	sort.Slice(remaining, func(a, b int) bool {
		return pre.Audience[DSP{key.Day, key.Slot, remaining[a]}] > pre.Audience[DSP{key.Day, key.Slot, remaining[b]}]
	})
	for _, i := range remaining {
		if len(kept) >= timeband.MaxCandidatesPerSlot {
			break
		}
		kept[i] = true
	}

	if fixedProg, ok := pre.FixedStart[key]; ok {
		kept[fixedProg] = true
	}

	result := make([]int, 0, len(kept))
	for i := range kept {
		result = append(result, i)
	}
	sort.Ints(result)
	return result
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
