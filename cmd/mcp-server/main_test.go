package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/airtime/gridplanner/internal/materialize"
	"github.com/airtime/gridplanner/internal/observability"
)

func newTestPlannerServer() *PlannerServer {
	return &PlannerServer{
		logger:    zap.NewNop(),
		metrics:   observability.NewNoOpRegistry(),
		schedules: make(map[string]materialize.Schedule),
	}
}

func TestPlanWeekRejectsMissingProgramsPath(t *testing.T) {
	s := newTestPlannerServer()
	result, _, err := s.PlanWeek(context.Background(), nil, PlanWeekInput{WeekStart: "2026-08-03"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestPlanWeekRejectsMalformedWeekStart(t *testing.T) {
	s := newTestPlannerServer()
	result, _, err := s.PlanWeek(context.Background(), nil, PlanWeekInput{ProgramsPath: "catalog.json", WeekStart: "not-a-date"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestPlanWeekRejectsMissingCatalogFile(t *testing.T) {
	s := newTestPlannerServer()
	result, _, err := s.PlanWeek(context.Background(), nil, PlanWeekInput{ProgramsPath: "/no/such/catalog.json", WeekStart: "2026-08-03"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestInspectScheduleRejectsUnknownScheduleID(t *testing.T) {
	s := newTestPlannerServer()
	result, _, err := s.InspectSchedule(context.Background(), nil, InspectScheduleInput{ScheduleID: "ghost"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestInspectScheduleReturnsWholeWeekWithoutDayFilter(t *testing.T) {
	s := newTestPlannerServer()
	s.schedules["2026-08-03-cpsat"] = materialize.Schedule{
		Days: []materialize.DaySchedule{{Day: "Lundi"}, {Day: "Mardi"}},
	}

	result, output, err := s.InspectSchedule(context.Background(), nil, InspectScheduleInput{ScheduleID: "2026-08-03-cpsat"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Len(t, output.Schedule.Days, 2)
}

func TestInspectScheduleFiltersToRequestedDay(t *testing.T) {
	s := newTestPlannerServer()
	s.schedules["2026-08-03-cpsat"] = materialize.Schedule{
		Days: []materialize.DaySchedule{{Day: "Lundi"}, {Day: "Mardi"}},
	}

	result, output, err := s.InspectSchedule(context.Background(), nil, InspectScheduleInput{ScheduleID: "2026-08-03-cpsat", Day: "Mardi"})
	require.NoError(t, err)
	assert.Nil(t, result)
	require.Len(t, output.Schedule.Days, 1)
	assert.Equal(t, "Mardi", output.Schedule.Days[0].Day)
}

func TestInspectScheduleRejectsUnknownDay(t *testing.T) {
	s := newTestPlannerServer()
	s.schedules["2026-08-03-cpsat"] = materialize.Schedule{
		Days: []materialize.DaySchedule{{Day: "Lundi"}},
	}

	result, _, err := s.InspectSchedule(context.Background(), nil, InspectScheduleInput{ScheduleID: "2026-08-03-cpsat", Day: "Dimanche"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
