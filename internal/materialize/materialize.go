// Package materialize turns a solver.Result's chosen starts back into the
// day-ordered schedule of spec.md §3/§6 — the schedule materializer, a
// thin external contract that must agree with the precomputer's
// coefficients (the round-trip property of spec.md §8).
package materialize

import (
	"time"

	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/solver"
	"github.com/airtime/gridplanner/internal/timeband"
)

// Item is one scheduled program occupying a contiguous slot range.
type Item struct {
	StartSlot       int    `json:"start_slot"`
	EndSlot         int    `json:"end_slot"`
	StartHHMM       string `json:"start_hhmm"`
	EndHHMM         string `json:"end_hhmm"`
	ProgramID       string `json:"program_id"`
	Title           string `json:"title"`
	Genre           string `json:"genre"`
	Subgenre        string `json:"subgenre"`
	DurationMinutes int    `json:"duration_minutes"`
	Cost            int    `json:"cost"`
	AdRevenue       int    `json:"ad_revenue"`
}

// DaySchedule is one day's worth of items with daily aggregates.
type DaySchedule struct {
	Day       string `json:"day"`
	Items     []Item `json:"items"`
	DayCost   int    `json:"day_cost"`
	DayRevenue int   `json:"day_revenue"`
	DayProfit int    `json:"day_profit"`
}

// BudgetSummary aggregates cost/revenue/profit across the whole week.
type BudgetSummary struct {
	WeeklyCost    int     `json:"weekly_cost"`
	WeeklyRevenue int     `json:"weekly_revenue"`
	WeeklyProfit  int     `json:"weekly_profit"`
	BudgetLimit   int     `json:"budget_limit"`
	BudgetUsedPct float64 `json:"budget_used_pct"`
}

// Meta carries solver provenance for the output file.
type Meta struct {
	Solver    string `json:"solver"`
	Status    string `json:"status"`
	Objective int    `json:"objective"`
	BestBound *int   `json:"best_bound,omitempty"`
	WeekStart string `json:"week_start"`
}

// Schedule is the full output document of spec.md §6.
type Schedule struct {
	Days          []DaySchedule `json:"days"`
	BudgetSummary BudgetSummary `json:"budget_summary"`
	Meta          Meta          `json:"meta"`
}

// Materialize builds the Schedule document for a solver result.
func Materialize(pre *gridmodel.Precomputed, result solver.Result, solverName string, weekStart time.Time) Schedule {
	days := make([]DaySchedule, timeband.Days)
	for d := 0; d < timeband.Days; d++ {
		days[d] = DaySchedule{Day: timeband.DayNamesFR[d]}
	}

	for _, st := range result.Starts {
		prog := pre.Programs[st.Program]
		dur := pre.DurationSlots[st.Program]
		band := timeband.BandForSlot(st.Slot)
		dayCoeff := timeband.DayCoefficient(st.Day)

		audience := int(float64(prog.BaseAudience) * band.AudMult * dayCoeff)
		adMinutes := timeband.AdBreaksForProgram(prog.Genre, prog.DurationMinutes) * timeband.AdBreakMinutes
		adRevenue := int(float64(audience) / 1000 * band.CPM * float64(adMinutes))

		item := Item{
			StartSlot:       st.Slot,
			EndSlot:         st.Slot + dur,
			StartHHMM:       timeband.HHMMFromSlot(st.Slot),
			EndHHMM:         timeband.HHMMFromSlot(st.Slot + dur),
			ProgramID:       prog.ID,
			Title:           prog.Title,
			Genre:           prog.Genre,
			Subgenre:        prog.Subgenre,
			DurationMinutes: prog.DurationMinutes,
			Cost:            prog.Cost,
			AdRevenue:       adRevenue,
		}

		days[st.Day].Items = append(days[st.Day].Items, item)
		days[st.Day].DayCost += item.Cost
		days[st.Day].DayRevenue += item.AdRevenue
		days[st.Day].DayProfit += item.AdRevenue - item.Cost
	}

	summary := BudgetSummary{BudgetLimit: timeband.WeeklyBudget}
	for _, d := range days {
		summary.WeeklyCost += d.DayCost
		summary.WeeklyRevenue += d.DayRevenue
		summary.WeeklyProfit += d.DayProfit
	}
	if summary.BudgetLimit > 0 {
		summary.BudgetUsedPct = float64(summary.WeeklyCost) / float64(summary.BudgetLimit) * 100
	}

	var bestBound *int
	if result.BestBound != 0 {
		bb := result.BestBound
		bestBound = &bb
	}

	return Schedule{
		Days:          days,
		BudgetSummary: summary,
		Meta: Meta{
			Solver:    solverName,
			Status:    string(result.Status),
			Objective: result.Objective,
			BestBound: bestBound,
			WeekStart: weekStart.Format("2006-01-02"),
		},
	}
}
