// Command mcp-server exposes the grid planner as an MCP tool server,
// grounded on the teacher's cmd/mcp-server/main.go wiring (tool schemas,
// stdio transport, structured logging to stderr).
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/airtime/gridplanner/internal/catalog"
	"github.com/airtime/gridplanner/internal/config"
	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/materialize"
	"github.com/airtime/gridplanner/internal/observability"
	"github.com/airtime/gridplanner/internal/solver"
	"github.com/airtime/gridplanner/internal/solver/cpsat"
	"github.com/airtime/gridplanner/internal/solver/findomain"
)

// PlanWeekInput selects the catalog, week, and solver for a planning run.
type PlanWeekInput struct {
	ProgramsPath  string  `json:"programs_path"`
	WeekStart     string  `json:"week_start"`
	Solver        string  `json:"solver,omitempty"`
	TimeLimitSecs float64 `json:"time_limit_seconds,omitempty"`
}

// PlanWeekOutput summarizes a completed solve without the full schedule
// body, which inspect_schedule retrieves separately.
type PlanWeekOutput struct {
	Status        string `json:"status"`
	Objective     int    `json:"objective"`
	WeeklyCost    int    `json:"weekly_cost"`
	WeeklyRevenue int    `json:"weekly_revenue"`
	WeeklyProfit  int    `json:"weekly_profit"`
	ScheduleID    string `json:"schedule_id"`
}

// InspectScheduleInput selects a previously planned week by its schedule ID.
type InspectScheduleInput struct {
	ScheduleID string `json:"schedule_id"`
	Day        string `json:"day,omitempty"`
}

// InspectScheduleOutput returns a materialized schedule or a single day
// of it.
type InspectScheduleOutput struct {
	Schedule materialize.Schedule `json:"schedule"`
}

// PlannerServer holds the dependencies shared by both tools. schedules
// keeps every materialized run of this process in memory (nothing is
// evicted), keyed by schedule ID, so inspect_schedule can be called after
// plan_week within the same process.
type PlannerServer struct {
	cfg       config.Config
	logger    *zap.Logger
	metrics   observability.MetricsRegistry
	schedules map[string]materialize.Schedule
}

// PlanWeek runs a full solve for the requested week and returns a summary.
func (s *PlannerServer) PlanWeek(ctx context.Context, req *mcp.CallToolRequest, input PlanWeekInput) (*mcp.CallToolResult, PlanWeekOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if input.ProgramsPath == "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: "programs_path is required"}},
		}, PlanWeekOutput{}, nil
	}

	weekStart, err := time.Parse("2006-01-02", input.WeekStart)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("invalid week_start: %v", err)}},
		}, PlanWeekOutput{}, nil
	}

	programs, _, err := catalog.NewJSONProvider(input.ProgramsPath, weekStart).Load()
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("load catalog: %v", err)}},
		}, PlanWeekOutput{}, nil
	}

	pre, err := gridmodel.Build(programs, weekStart, s.metrics)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("precompute: %v", err)}},
		}, PlanWeekOutput{}, nil
	}

	var backend solver.Backend
	switch input.Solver {
	case "minizinc", "findomain":
		backend = findomain.New()
	default:
		backend = cpsat.New()
	}

	timeLimit := input.TimeLimitSecs
	if timeLimit <= 0 {
		timeLimit = 60
	}

	drv := solver.NewDriver(backend, s.logger, s.metrics)
	result, err := drv.Run(ctx, pre, solver.Params{TimeLimitSeconds: timeLimit, RelativeGap: 0.01, Workers: 4}, "")
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("solve: %v", err)}},
		}, PlanWeekOutput{}, nil
	}

	schedule := materialize.Materialize(pre, result, backend.Name(), weekStart)
	scheduleID := fmt.Sprintf("%s-%s", weekStart.Format("2006-01-02"), backend.Name())
	s.schedules[scheduleID] = schedule

	return nil, PlanWeekOutput{
		Status:        schedule.Meta.Status,
		Objective:     schedule.Meta.Objective,
		WeeklyCost:    schedule.BudgetSummary.WeeklyCost,
		WeeklyRevenue: schedule.BudgetSummary.WeeklyRevenue,
		WeeklyProfit:  schedule.BudgetSummary.WeeklyProfit,
		ScheduleID:    scheduleID,
	}, nil
}

// InspectSchedule returns a previously planned schedule, optionally
// filtered to a single day.
func (s *PlannerServer) InspectSchedule(ctx context.Context, req *mcp.CallToolRequest, input InspectScheduleInput) (*mcp.CallToolResult, InspectScheduleOutput, error) {
	schedule, ok := s.schedules[input.ScheduleID]
	if !ok {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("unknown schedule_id %q", input.ScheduleID)}},
		}, InspectScheduleOutput{}, nil
	}

	if input.Day == "" {
		return nil, InspectScheduleOutput{Schedule: schedule}, nil
	}

	filtered := schedule
	filtered.Days = nil
	for _, d := range schedule.Days {
		if d.Day == input.Day {
			filtered.Days = append(filtered.Days, d)
		}
	}
	if len(filtered.Days) == 0 {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("no such day %q in schedule %q", input.Day, input.ScheduleID)}},
		}, InspectScheduleOutput{}, nil
	}
	return nil, InspectScheduleOutput{Schedule: filtered}, nil
}

func main() {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.EncoderConfig.TimeKey = "ts"
	zapCfg.EncoderConfig.LevelKey = "level"
	zapCfg.EncoderConfig.NameKey = "logger"
	zapCfg.EncoderConfig.CallerKey = "caller"
	zapCfg.EncoderConfig.MessageKey = "msg"
	zapCfg.EncoderConfig.StacktraceKey = "stacktrace"

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("gridplanner-mcp").With(zap.String("service", "gridplanner-mcp"))
	logger.Info("starting gridplanner MCP server")

	cfg := config.Load()
	plannerServer := &PlannerServer{
		cfg:       cfg,
		logger:    logger,
		metrics:   observability.NewNoOpRegistry(),
		schedules: make(map[string]materialize.Schedule),
	}

	srv := mcp.NewServer(&mcp.Implementation{Name: "gridplanner", Version: "1.0.0"}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "plan_week",
		Description: "Solve one week of the broadcast grid and return a profit/cost summary",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"programs_path":      map[string]interface{}{"type": "string", "description": "path to the programs catalog JSON file"},
				"week_start":         map[string]interface{}{"type": "string", "description": "ISO date (YYYY-MM-DD) of the Monday the week starts on"},
				"solver":             map[string]interface{}{"type": "string", "enum": []string{"ortools", "minizinc"}, "description": "solver backend (optional, defaults to ortools)"},
				"time_limit_seconds": map[string]interface{}{"type": "number", "description": "solver wall-clock budget (optional, defaults to 60)"},
			},
			"required": []string{"programs_path", "week_start"},
		},
	}, plannerServer.PlanWeek)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "inspect_schedule",
		Description: "Retrieve a previously planned schedule, optionally filtered to one day",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"schedule_id": map[string]interface{}{"type": "string", "description": "schedule ID returned by plan_week"},
				"day":         map[string]interface{}{"type": "string", "description": "French day name to filter to (optional)"},
			},
			"required": []string{"schedule_id"},
		},
	}, plannerServer.InspectSchedule)

	stdioTransport := &mcp.StdioTransport{}
	var logBuffer bytes.Buffer
	loggingTransport := &mcp.LoggingTransport{Transport: stdioTransport, Writer: &logBuffer}

	if err := srv.Run(context.Background(), loggingTransport); err != nil {
		logger.Fatal("server error", zap.Error(err), zap.String("mcp_logs", logBuffer.String()))
	}
}
