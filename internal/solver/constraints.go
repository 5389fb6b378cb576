package solver

import (
	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/timeband"
)

// Metrics summarizes a week-long assignment against every constraint family
// in spec.md §4.2, so both backends can score candidate solutions the same
// way and the driver can report which family is violated.
type Metrics struct {
	TotalCost        int
	EuropeanMinutes  int
	FrenchMinutes    int
	GenreMinutes     map[string]int
	ProgramUses      map[int]int // program index -> number of airings this week
	SocietalMagCount int

	DailyGenreCount   [timeband.Days]int
	DailyDocCount     [timeband.Days]int
	FictionViolations int
	AdViolations      int
	FixedViolations   int
}

// Evaluate computes Metrics for a full week assignment, given as
// week[d] = starts for day d sorted by slot, covering every slot exactly
// once.
func Evaluate(inst *Instance, week [][]Start) Metrics {
	pre := inst.Pre
	m := Metrics{
		GenreMinutes: make(map[string]int),
		ProgramUses:  make(map[int]int),
	}

	for d, starts := range week {
		genresToday := make(map[int]bool)
		for _, st := range starts {
			p := st.Program
			prog := pre.Programs[p]
			dur := prog.DurationMinutes

			m.TotalCost += prog.Cost
			if pre.IsEuropean[p] {
				m.EuropeanMinutes += dur
			}
			if pre.IsFrench[p] {
				m.FrenchMinutes += dur
			}
			if group, ok := gridmodel.GenreGroup(prog.Genre); ok {
				m.GenreMinutes[group] += dur
			}
			m.ProgramUses[p]++

			genresToday[pre.GenreID[p]] = true
			if prog.Genre == gridmodel.GenreDocumentaire {
				m.DailyDocCount[d]++
			}
			if prog.Genre == gridmodel.GenreMagazine && gridmodel.SocietalMagazineSubgenres[prog.Subgenre] {
				m.SocietalMagCount++
			}
		}
		m.DailyGenreCount[d] = len(genresToday)
		m.FictionViolations += fictionAlternationViolations(pre, starts)
	}

	m.AdViolations = adRollingViolations(inst, week)
	m.FixedViolations = fixedCellViolations(pre, week)

	return m
}

// fixedCellViolations counts pinned (day, slot) cells whose chosen program
// in week does not match pre.FixedStart, i.e. a mandatory block (news,
// contractual slot) that the assignment silently dropped.
func fixedCellViolations(pre *gridmodel.Precomputed, week [][]Start) int {
	violations := 0
	for cell, fixedProg := range pre.FixedStart {
		if cell.Day < 0 || cell.Day >= len(week) {
			violations++
			continue
		}
		found := false
		for _, st := range week[cell.Day] {
			if st.Slot == cell.Slot {
				found = st.Program == fixedProg
				break
			}
		}
		if !found {
			violations++
		}
	}
	return violations
}

// fictionAlternationViolations counts how many 4-consecutive-start windows
// (before the Nuit cutoff) are all-fiction or all-non-fiction.
func fictionAlternationViolations(pre *gridmodel.Precomputed, starts []Start) int {
	var eligible []bool
	for _, st := range starts {
		if st.Slot >= timeband.NuitStartSlot {
			continue
		}
		eligible = append(eligible, pre.IsFiction[st.Program])
	}
	violations := 0
	for i := 0; i+4 <= len(eligible); i++ {
		sum := 0
		for j := i; j < i+4; j++ {
			if eligible[j] {
				sum++
			}
		}
		if sum == 0 || sum == 4 {
			violations++
		}
	}
	return violations
}

// adRollingViolations counts rolling-hour windows exceeding the 12,000
// milli-ad-minute cap.
func adRollingViolations(inst *Instance, week [][]Start) int {
	pre := inst.Pre
	violations := 0
	for d := 0; d < timeband.Days && d < len(week); d++ {
		for h := 0; h+12 <= timeband.SlotsPerDay; h++ {
			sum := 0
			for t := h; t < h+12; t++ {
				for _, st := range inst.Covers[gridmodel.DS{Day: d, Slot: t}] {
					sum += pre.AdRateMilli[st.Program] * timeband.SlotMinutes
				}
			}
			if sum > timeband.MaxAdMinutesPerHour*1000 {
				violations++
			}
		}
	}
	return violations
}

// Feasible reports whether m satisfies every hard constraint in spec.md §8.
func (m Metrics) Feasible(pre *gridmodel.Precomputed) bool {
	if m.TotalCost > timeband.WeeklyBudget {
		return false
	}
	if float64(m.EuropeanMinutes) < float64(timeband.MinEuropeanPercent)/100*float64(timeband.TotalWeeklyMinutes) {
		return false
	}
	if float64(m.FrenchMinutes) < float64(timeband.MinFrenchPercent)/100*float64(timeband.TotalWeeklyMinutes) {
		return false
	}
	for group, band := range gridmodel.GenreQuotasWeek {
		minutes := float64(m.GenreMinutes[group])
		total := float64(timeband.TotalWeeklyMinutes)
		if minutes < band.MinPercent/100*total || minutes > band.MaxPercent/100*total {
			return false
		}
	}
	for d := 0; d < timeband.Days; d++ {
		if m.DailyGenreCount[d] < 4 {
			return false
		}
		if m.DailyDocCount[d] < 1 {
			return false
		}
	}
	if m.SocietalMagCount < 1 {
		return false
	}
	if len(SeriesFrequencyViolations(pre, m)) > 0 {
		return false
	}
	if m.FictionViolations > 0 {
		return false
	}
	if m.AdViolations > 0 {
		return false
	}
	if m.FixedViolations > 0 {
		return false
	}
	return true
}

// SeriesFrequencyViolations returns program indices airing more than once
// this week among Série-genre programs.
func SeriesFrequencyViolations(pre *gridmodel.Precomputed, m Metrics) []int {
	var bad []int
	for p, uses := range m.ProgramUses {
		if uses > 1 && pre.Programs[p].Genre == gridmodel.GenreSerie {
			bad = append(bad, p)
		}
	}
	return bad
}

// Penalty turns Metrics into a single non-negative scalar the local search
// minimizes to zero; zero means every hard constraint holds.
func Penalty(pre *gridmodel.Precomputed, m Metrics) float64 {
	p := 0.0
	if over := m.TotalCost - timeband.WeeklyBudget; over > 0 {
		p += float64(over)
	}
	total := float64(timeband.TotalWeeklyMinutes)
	if deficit := float64(timeband.MinEuropeanPercent)/100*total - float64(m.EuropeanMinutes); deficit > 0 {
		p += deficit * 1000
	}
	if deficit := float64(timeband.MinFrenchPercent)/100*total - float64(m.FrenchMinutes); deficit > 0 {
		p += deficit * 1000
	}
	for group, band := range gridmodel.GenreQuotasWeek {
		minutes := float64(m.GenreMinutes[group])
		if deficit := band.MinPercent/100*total - minutes; deficit > 0 {
			p += deficit * 500
		}
		if excess := minutes - band.MaxPercent/100*total; excess > 0 {
			p += excess * 500
		}
	}
	for d := 0; d < timeband.Days; d++ {
		if m.DailyGenreCount[d] < 4 {
			p += float64(4-m.DailyGenreCount[d]) * 10000
		}
		if m.DailyDocCount[d] < 1 {
			p += 10000
		}
	}
	if m.SocietalMagCount < 1 {
		p += 10000
	}
	for _, bad := range SeriesFrequencyViolations(pre, m) {
		_ = bad
		p += 20000
	}
	p += float64(m.FictionViolations) * 5000
	p += float64(m.AdViolations) * 5000
	p += float64(m.FixedViolations) * 50000
	return p
}
