package gridmodel

import (
	"strconv"
	"strings"
	"time"

	"github.com/airtime/gridplanner/internal/catalog"
	"github.com/airtime/gridplanner/internal/timeband"
)

// defaultMinRerunDays gives the fallback rerun gap (in days) by genre when a
// program does not carry an explicit min_rerun_days. Genres not listed here
// have no rerun restriction.
var defaultMinRerunDays = map[string]int{
	GenreFilm:         90,
	GenreDocumentaire: 30,
	GenreActualites:   1,
}

// ageMinSlot maps an age rating to the earliest slot a program may start.
// Ratings not listed carry no lower bound.
var ageMinSlot = map[string]int{
	"-10": 192, // 22:00
	"-12": 192, // 22:00
	"-16": 198, // 22:30
	"-18": 204, // 23:00
}

// newContentWindowStart and newContentWindowEnd bound the 18:00-22:30
// new-content window.
var (
	newContentWindowStart = 144 // 18:00
	newContentWindowEnd   = 198 // 22:30, exclusive
)

const exclusivityCooldownDays = 180

// filterFit reports whether a program starting at slot s fits within the day.
func filterFit(s, durationSlots int) bool {
	return s+durationSlots <= timeband.SlotsPerDay
}

// filterAvailability enforces the not-in-production and rights-window rules.
func filterAvailability(p catalog.Program, weekStart time.Time) bool {
	if p.InProduction {
		return false
	}
	if p.RightsStart != nil && weekStart.Before(*p.RightsStart) {
		return false
	}
	if p.RightsEnd != nil && weekStart.After(*p.RightsEnd) {
		return false
	}
	return true
}

// filterRerun enforces the minimum gap since the program's last broadcast.
// A malformed or absent last-broadcast date is treated conservatively as
// "no restriction", per spec.md §4.1 failure modes.
func filterRerun(p catalog.Program, weekStart time.Time) bool {
	if p.LastBroadcastDate == nil {
		return true
	}
	minGap := 0
	if p.MinRerunDays != nil {
		minGap = *p.MinRerunDays
	} else if d, ok := defaultMinRerunDays[p.Genre]; ok {
		minGap = d
	} else {
		return true
	}
	gapDays := int(weekStart.Sub(*p.LastBroadcastDate).Hours() / 24)
	return gapDays >= minGap
}

// filterAgeSignal enforces the minimum start slot implied by the age rating.
func filterAgeSignal(p catalog.Program, s int) bool {
	min, ok := ageMinSlot[p.AgeRating]
	if !ok {
		return true
	}
	return s >= min
}

// filterNewContentPinning confines is_new programs to Access Prime/Prime Time.
func filterNewContentPinning(p catalog.Program, s int) bool {
	if !p.IsNew {
		return true
	}
	return s >= newContentWindowStart && s < newContentWindowEnd
}

// filterExclusivityCooldown enforces the 180-day cooldown for exclusives
// with a known prior broadcast.
func filterExclusivityCooldown(p catalog.Program, weekStart time.Time) bool {
	if !p.IsExclusive || p.LastBroadcastDate == nil {
		return true
	}
	gapDays := int(weekStart.Sub(*p.LastBroadcastDate).Hours() / 24)
	return gapDays >= exclusivityCooldownDays
}

// filterSeriesHabit keeps series programs close to their usual slot/day
// when the catalog states a habit.
func filterSeriesHabit(p catalog.Program, d, s int) bool {
	if p.Genre != GenreSerie {
		return true
	}
	if p.UsualDay != nil && *p.UsualDay != d {
		return false
	}
	if p.UsualTime != nil {
		usualSlot, ok := parseHHMMSlot(*p.UsualTime)
		if ok {
			diff := s - usualSlot
			if diff < 0 {
				diff = -diff
			}
			if diff > 4 {
				return false
			}
		}
	}
	return true
}

// parseHHMMSlot parses an "HH:MM" string into a slot index, returning ok=false
// on any malformed input so callers can treat it as "no restriction".
func parseHHMMSlot(hhmm string) (int, bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, false
	}
	if h < timeband.ScheduleStartHour {
		h += 24
	}
	s, err := timeband.SlotFromTime(h, m)
	if err != nil {
		return 0, false
	}
	return s, true
}

// eligible runs the full filter chain for program p starting at (d, s),
// in the order specified by spec.md §4.1.
func eligible(p catalog.Program, weekStart time.Time, d, s, durationSlots int) bool {
	if !filterFit(s, durationSlots) {
		return false
	}
	if !filterAvailability(p, weekStart) {
		return false
	}
	if !filterRerun(p, weekStart) {
		return false
	}
	if !filterAgeSignal(p, s) {
		return false
	}
	if !filterNewContentPinning(p, s) {
		return false
	}
	if !filterExclusivityCooldown(p, weekStart) {
		return false
	}
	if !filterSeriesHabit(p, d, s) {
		return false
	}
	return true
}
