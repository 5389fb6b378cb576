package export_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airtime/gridplanner/internal/export"
	"github.com/airtime/gridplanner/internal/materialize"
)

func sampleSchedule() materialize.Schedule {
	return materialize.Schedule{
		Days: []materialize.DaySchedule{
			{
				Day: "Lundi",
				Items: []materialize.Item{
					{StartHHMM: "13:00", EndHHMM: "13:40", Title: "Journal", Genre: "Actualites", Cost: 500, AdRevenue: 800},
				},
				DayCost:    500,
				DayRevenue: 800,
				DayProfit:  300,
			},
		},
		BudgetSummary: materialize.BudgetSummary{
			WeeklyCost: 500, WeeklyRevenue: 800, WeeklyProfit: 300, BudgetLimit: 1_000_000, BudgetUsedPct: 0.05,
		},
		Meta: materialize.Meta{Solver: "cpsat", Status: "OPTIMAL", Objective: 300, WeekStart: "2026-08-03"},
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	sched := sampleSchedule()
	path := filepath.Join(t.TempDir(), "schedule.json")
	require.NoError(t, export.WriteJSON(path, sched))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var got materialize.Schedule
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, sched, got)
}

func TestWriteJSONIsIndented(t *testing.T) {
	sched := sampleSchedule()
	path := filepath.Join(t.TempDir(), "schedule.json")
	require.NoError(t, export.WriteJSON(path, sched))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  ")
}

func TestWriteTableContainsRowsAndSummary(t *testing.T) {
	sched := sampleSchedule()
	var buf bytes.Buffer
	export.WriteTable(&buf, sched)

	out := buf.String()
	assert.Contains(t, out, "Lundi")
	assert.Contains(t, out, "Journal")
	assert.Contains(t, out, "weekly cost=500")
	assert.Contains(t, out, "solver=cpsat")
}

func TestWriteJSONErrorsOnUnwritablePath(t *testing.T) {
	err := export.WriteJSON(filepath.Join(t.TempDir(), "missing-dir", "schedule.json"), sampleSchedule())
	assert.Error(t, err)
}
