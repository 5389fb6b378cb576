// Package export renders a materialized Schedule as JSON (the external
// interface of spec.md §6) or as a human-readable terminal table.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/airtime/gridplanner/internal/materialize"
)

// WriteJSON writes schedule to path as the UTF-8 JSON document of spec.md §6.
func WriteJSON(path string, schedule materialize.Schedule) error {
	raw, err := json.MarshalIndent(schedule, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal schedule: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// WriteTable renders a day-by-day overview to w, for terminal inspection.
func WriteTable(w io.Writer, schedule materialize.Schedule) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "DAY\tSTART\tEND\tTITLE\tGENRE\tCOST\tAD REVENUE\n")
	for _, day := range schedule.Days {
		for _, item := range day.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
				day.Day, item.StartHHMM, item.EndHHMM, item.Title, item.Genre, item.Cost, item.AdRevenue)
		}
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\nweekly cost=%d revenue=%d profit=%d budget_used=%.1f%%\n",
		schedule.BudgetSummary.WeeklyCost,
		schedule.BudgetSummary.WeeklyRevenue,
		schedule.BudgetSummary.WeeklyProfit,
		schedule.BudgetSummary.BudgetUsedPct,
	)
	fmt.Fprintf(w, "solver=%s status=%s objective=%d\n",
		schedule.Meta.Solver, schedule.Meta.Status, schedule.Meta.Objective)
}
