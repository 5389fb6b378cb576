// Package analytics records each completed solve into ClickHouse, giving
// operators a queryable history of schedule runs (objective over time,
// status mix, weekly cost/revenue/profit) the way the ad server records
// request-time events.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/airtime/gridplanner/internal/materialize"
	"github.com/airtime/gridplanner/internal/observability"
)

// ScheduleHistory records completed planning runs.
type ScheduleHistory interface {
	RecordRun(ctx context.Context, weekStart time.Time, schedule materialize.Schedule) error
}

// ClickHouseHistory wraps a ClickHouse connection holding one row per
// planning run.
type ClickHouseHistory struct {
	DB      *sql.DB
	Metrics observability.MetricsRegistry
}

const createRunsTable = `CREATE TABLE IF NOT EXISTS schedule_runs (
	timestamp       DateTime,
	week_start      Date,
	solver          String,
	status          String,
	objective       Int64,
	best_bound      Nullable(Int64),
	weekly_cost     Int64,
	weekly_revenue  Int64,
	weekly_profit   Int64,
	budget_used_pct Float64
) ENGINE=MergeTree() ORDER BY (week_start, timestamp)`

// InitClickHouse connects to ClickHouse and ensures the schedule_runs table
// exists.
func InitClickHouse(dsn string, metrics observability.MetricsRegistry) (*ClickHouseHistory, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("analytics: clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(25)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("analytics: clickhouse ping: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), createRunsTable); err != nil {
		return nil, fmt.Errorf("analytics: create schedule_runs table: %w", err)
	}
	zap.L().Info("connected to clickhouse schedule history")
	return &ClickHouseHistory{DB: db, Metrics: metrics}, nil
}

// RecordRun inserts one row summarizing a completed solve.
func (c *ClickHouseHistory) RecordRun(ctx context.Context, weekStart time.Time, schedule materialize.Schedule) error {
	var bestBound sql.NullInt64
	if schedule.Meta.BestBound != nil {
		bestBound = sql.NullInt64{Int64: int64(*schedule.Meta.BestBound), Valid: true}
	}
	_, err := c.DB.ExecContext(ctx, `INSERT INTO schedule_runs
		(timestamp, week_start, solver, status, objective, best_bound, weekly_cost, weekly_revenue, weekly_profit, budget_used_pct)
		VALUES (now(), ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		weekStart, schedule.Meta.Solver, schedule.Meta.Status, schedule.Meta.Objective, bestBound,
		schedule.BudgetSummary.WeeklyCost, schedule.BudgetSummary.WeeklyRevenue, schedule.BudgetSummary.WeeklyProfit,
		schedule.BudgetSummary.BudgetUsedPct,
	)
	if err != nil {
		return fmt.Errorf("analytics: insert schedule run: %w", err)
	}
	return nil
}

// Close terminates the ClickHouse connection.
func (c *ClickHouseHistory) Close() {
	if c != nil && c.DB != nil {
		if err := c.DB.Close(); err != nil {
			zap.L().Error("analytics: clickhouse close", zap.Error(err))
		}
	}
}
