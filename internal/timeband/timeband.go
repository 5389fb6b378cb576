// Package timeband holds the slot/time/band arithmetic shared by the
// precomputer and the schedule materializer, so the two agree on audience
// and revenue coefficients (the round-trip property in spec.md §8).
package timeband

import "fmt"

const (
	// SlotMinutes is the duration of one scheduling slot.
	SlotMinutes = 5
	// SlotsPerDay is the number of slots in a broadcast day (06:00 to 02:00).
	SlotsPerDay = 240
	// Days is the number of days in a scheduling week.
	Days = 7
	// ScheduleStartHour is the hour of day at which slot 0 begins.
	ScheduleStartHour = 6

	// WeeklyBudget is the hard cap on total program cost per week.
	WeeklyBudget = 5_000_000
	// MinEuropeanPercent is the legal minimum share of weekly minutes that
	// must be European content.
	MinEuropeanPercent = 60
	// MinFrenchPercent is the legal minimum share of weekly minutes that
	// must be French content.
	MinFrenchPercent = 40
	// MinIndependentPercent is nominally included per spec.md §9 but is 0
	// because the catalog does not flag independent productions.
	MinIndependentPercent = 0

	// TotalWeeklyMinutes is 7 days * 20 broadcast hours * 60 minutes.
	TotalWeeklyMinutes = Days * 20 * 60

	// MaxCandidatesPerSlot bounds the number of programs considered eligible
	// for any single (day, slot) cell.
	MaxCandidatesPerSlot = 25

	// MaxAdMinutesPerHour is the regulatory ceiling on ad minutes within any
	// rolling 60-minute (12-slot) window.
	MaxAdMinutesPerHour = 12

	// AdBreakMinutes is the length, in minutes, of a single ad break.
	AdBreakMinutes = 3
)

// Band is a contiguous, named interval of slots sharing an audience
// multiplier and a CPM (ad price per thousand viewers per ad minute).
type Band struct {
	Name     string
	StartSlot int
	EndSlot   int // exclusive
	AudMult   float64
	CPM       float64
}

// Bands partitions the 240-slot day into eight named bands, in slot order.
// Values are taken verbatim from the regulatory/commercial tables; do not
// reorder without checking the Nuit-band fiction-alternation cutoff below.
var Bands = []Band{
	{Name: "Matin", StartSlot: slotFromHHMM(6, 0), EndSlot: slotFromHHMM(9, 0), AudMult: 0.6, CPM: 5},
	{Name: "Matinée", StartSlot: slotFromHHMM(9, 0), EndSlot: slotFromHHMM(12, 0), AudMult: 0.4, CPM: 5},
	{Name: "Midi", StartSlot: slotFromHHMM(12, 0), EndSlot: slotFromHHMM(14, 0), AudMult: 0.9, CPM: 10},
	{Name: "Après-midi", StartSlot: slotFromHHMM(14, 0), EndSlot: slotFromHHMM(18, 0), AudMult: 0.5, CPM: 5},
	{Name: "Access Prime", StartSlot: slotFromHHMM(18, 0), EndSlot: slotFromHHMM(20, 0), AudMult: 1.1, CPM: 12},
	{Name: "Prime Time", StartSlot: slotFromHHMM(20, 0), EndSlot: slotFromHHMM(22, 30), AudMult: 1.3, CPM: 15},
	{Name: "Deuxième partie", StartSlot: slotFromHHMM(22, 30), EndSlot: slotFromHHMM(24, 30), AudMult: 0.8, CPM: 8},
	{Name: "Nuit", StartSlot: slotFromHHMM(24, 30), EndSlot: slotFromHHMM(26, 0), AudMult: 0.3, CPM: 3},
}

// NuitStartSlot is the first slot (00:30) at which the fiction-alternation
// constraint is disabled, since only Jeunesse airs in that band.
var NuitStartSlot = slotFromHHMM(24, 30)

// DayNamesFR lists the French day names in week order, Monday first,
// matching the "day" field of the schedule output.
var DayNamesFR = []string{"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}

// DayCoefficient returns the audience day-multiplier for day index d
// (0 = Monday .. 6 = Sunday).
func DayCoefficient(d int) float64 {
	switch d {
	case 5: // Saturday
		return 1.1
	case 6: // Sunday
		return 1.2
	default:
		return 1.0
	}
}

// slotFromHHMM converts an hour/minute pair, hours measured from midnight
// of the broadcast day (so 24:30 means 00:30 the next morning), into a slot
// index relative to the 06:00 schedule start.
func slotFromHHMM(hour, minute int) int {
	minutesFromStart := (hour-ScheduleStartHour)*60 + minute
	return minutesFromStart / SlotMinutes
}

// SlotFromTime converts a wall-clock hour/minute (24h, where values past
// midnight are expressed as 24+h, e.g. 0:30 -> hour=24, minute=30) into a
// slot index. Used when parsing fixed_time / preferred_slots from the
// catalog.
func SlotFromTime(hour, minute int) (int, error) {
	s := slotFromHHMM(hour, minute)
	if s < 0 || s >= SlotsPerDay {
		return 0, fmt.Errorf("timeband: time %02d:%02d falls outside the broadcast day", hour, minute)
	}
	return s, nil
}

// TimeFromSlot returns the hour/minute (possibly hour >= 24) corresponding
// to the start of slot s.
func TimeFromSlot(s int) (hour, minute int) {
	total := s*SlotMinutes + ScheduleStartHour*60
	hour = total / 60
	minute = total % 60
	return hour, minute
}

// HHMMFromSlot formats slot s as "HH:MM" wall-clock time, wrapping hours
// past midnight back into 0-23.
func HHMMFromSlot(s int) string {
	hour, minute := TimeFromSlot(s)
	hour = hour % 24
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// BandForSlot returns the band containing slot s. Panics if s is outside
// 0..SlotsPerDay-1, since every valid slot must belong to exactly one band.
func BandForSlot(s int) Band {
	for _, b := range Bands {
		if s >= b.StartSlot && s < b.EndSlot {
			return b
		}
	}
	panic(fmt.Sprintf("timeband: slot %d is not covered by any band", s))
}

// DurationSlots returns ceil(durationMinutes / SlotMinutes).
func DurationSlots(durationMinutes int) int {
	return (durationMinutes + SlotMinutes - 1) / SlotMinutes
}

// AdBreaksForProgram returns the number of ad breaks for a program of the
// given genre and duration. Film caps at 2 breaks (duration/45); all other
// genres use duration/30. Programs under 30 minutes carry no ads.
func AdBreaksForProgram(genre string, durationMinutes int) int {
	if durationMinutes < 30 {
		return 0
	}
	if genre == "Film" {
		breaks := durationMinutes / 45
		if breaks > 2 {
			breaks = 2
		}
		return breaks
	}
	return durationMinutes / 30
}

// AdRateMilli returns the scheduled ad minutes per program-minute, expressed
// in milli-units (ad_minutes * 1000 / duration_minutes), for use in the
// rolling-hour advertising constraint.
func AdRateMilli(genre string, durationMinutes int) int {
	if durationMinutes <= 0 {
		return 0
	}
	breaks := AdBreaksForProgram(genre, durationMinutes)
	adMinutes := breaks * AdBreakMinutes
	return adMinutes * 1000 / durationMinutes
}
