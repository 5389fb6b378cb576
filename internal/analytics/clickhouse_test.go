package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airtime/gridplanner/internal/analytics"
	"github.com/airtime/gridplanner/internal/materialize"
)

func TestRecordRunInsertsOneRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO schedule_runs").
		WithArgs(sqlmock.AnyArg(), "cpsat", "OPTIMAL", 1200, sqlmock.AnyArg(), 5000, 6200, 1200, 0.5).
		WillReturnResult(sqlmock.NewResult(1, 1))

	history := &analytics.ClickHouseHistory{DB: db}
	bestBound := 1200
	schedule := materialize.Schedule{
		BudgetSummary: materialize.BudgetSummary{WeeklyCost: 5000, WeeklyRevenue: 6200, WeeklyProfit: 1200, BudgetUsedPct: 0.5},
		Meta:          materialize.Meta{Solver: "cpsat", Status: "OPTIMAL", Objective: 1200, BestBound: &bestBound},
	}

	err = history.RecordRun(context.Background(), time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), schedule)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRunNullBestBoundWhenSolverGaveNone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO schedule_runs").
		WithArgs(sqlmock.AnyArg(), "findomain", "INFEASIBLE", 0, nil, 0, 0, 0, 0.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	history := &analytics.ClickHouseHistory{DB: db}
	schedule := materialize.Schedule{Meta: materialize.Meta{Solver: "findomain", Status: "INFEASIBLE"}}

	err = history.RecordRun(context.Background(), time.Now(), schedule)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRunWrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO schedule_runs").WillReturnError(assert.AnError)

	history := &analytics.ClickHouseHistory{DB: db}
	err = history.RecordRun(context.Background(), time.Now(), materialize.Schedule{})
	assert.Error(t, err)
}

func TestCloseIsSafeOnNilHistory(t *testing.T) {
	var history *analytics.ClickHouseHistory
	assert.NotPanics(t, history.Close)
}
