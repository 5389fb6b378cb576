// Command gridplanner solves one week of the broadcast grid and writes the
// resulting schedule to disk, following the flag/shutdown/wiring pattern of
// the teacher's tools/cmd/server/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/airtime/gridplanner/internal/analytics"
	"github.com/airtime/gridplanner/internal/cache"
	"github.com/airtime/gridplanner/internal/catalog"
	"github.com/airtime/gridplanner/internal/config"
	"github.com/airtime/gridplanner/internal/export"
	"github.com/airtime/gridplanner/internal/gridmodel"
	"github.com/airtime/gridplanner/internal/materialize"
	"github.com/airtime/gridplanner/internal/observability"
	"github.com/airtime/gridplanner/internal/server"
	"github.com/airtime/gridplanner/internal/solver"
	"github.com/airtime/gridplanner/internal/solver/cpsat"
	"github.com/airtime/gridplanner/internal/solver/findomain"
)

func main() {
	cfg := config.Load()

	programsPath := flag.String("programs", cfg.ProgramsPath, "path to the programs catalog JSON file")
	catalogSource := flag.String("catalog-source", cfg.CatalogSource, "catalog source: json or postgres")
	solverName := flag.String("solver", "ortools", "solver backend: ortools (CP-SAT-style) or minizinc (finite-domain)")
	timeLimit := durationFlag(cfg.TimeLimit)
	flag.Var(&timeLimit, "time-limit", "solver wall-clock budget: bare seconds (e.g. 600) or a duration string (e.g. 10m)")
	gap := flag.Float64("gap", cfg.Gap, "acceptable relative optimality gap")
	hintPath := flag.String("hint", cfg.HintPath, "warm-start hint file (optional)")
	weekStartFlag := flag.String("week-start", cfg.WeekStart, "ISO week-start date (YYYY-MM-DD), defaults to the upcoming Monday")
	outPath := flag.String("out", cfg.OutPath, "output schedule JSON path")
	searchWorkers := flag.Int("search-workers", cfg.SearchWorkers, "number of parallel local-search workers")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "address to serve /healthz, /status and /metrics on (empty disables)")
	tracingEndpoint := flag.String("tracing-endpoint", cfg.TracingEndpoint, "OTLP gRPC collector endpoint")
	table := flag.Bool("table", false, "also print a human-readable schedule table to stdout")
	flag.Parse()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	backendName, err := resolveBackendName(*solverName)
	if err != nil {
		logger.Error("invalid solver flag", zap.Error(err))
		os.Exit(2)
	}

	status, err := run(logger, cfg, runOptions{
		programsPath:      *programsPath,
		catalogSource:     *catalogSource,
		backendName:       backendName,
		timeLimit:         time.Duration(timeLimit),
		gap:               *gap,
		hintPath:          *hintPath,
		weekStart:         *weekStartFlag,
		outPath:           *outPath,
		searchWorkers:     *searchWorkers,
		metricsAddr:       *metricsAddr,
		tracingEndpoint:   *tracingEndpoint,
		printTable:        *table,
	})
	if err != nil {
		logger.Error("gridplanner failed", zap.Error(err))
		os.Exit(1)
	}

	switch status {
	case solver.StatusOptimal, solver.StatusFeasible:
		os.Exit(0)
	default:
		os.Exit(3)
	}
}

// durationFlag implements flag.Value so --time-limit accepts a bare number
// of seconds, as spec.md documents (e.g. --time-limit 600), in addition to
// a Go duration string, mirroring internal/config.envDuration's parsing of
// the equivalent GRIDPLANNER_TIME_LIMIT environment variable.
type durationFlag time.Duration

func (d *durationFlag) String() string {
	return time.Duration(*d).String()
}

func (d *durationFlag) Set(value string) error {
	if secs, err := strconv.Atoi(value); err == nil {
		*d = durationFlag(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid --time-limit %q: want a number of seconds or a duration string", value)
	}
	*d = durationFlag(parsed)
	return nil
}

func resolveBackendName(flagValue string) (string, error) {
	switch flagValue {
	case "ortools", "cpsat":
		return "cpsat", nil
	case "minizinc", "findomain":
		return "findomain", nil
	default:
		return "", fmt.Errorf("unknown --solver %q (want ortools or minizinc)", flagValue)
	}
}

type runOptions struct {
	programsPath    string
	catalogSource   string
	backendName     string
	timeLimit       time.Duration
	gap             float64
	hintPath        string
	weekStart       string
	outPath         string
	searchWorkers   int
	metricsAddr     string
	tracingEndpoint string
	printTable      bool
}

func run(logger *zap.Logger, cfg config.Config, opts runOptions) (solver.Status, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(ctx, logger, cfg.ServiceName, opts.tracingEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return solver.StatusUnknown, fmt.Errorf("init tracing: %w", err)
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	metrics := observability.NewPrometheusRegistry()

	weekStart, err := resolveWeekStart(opts.weekStart)
	if err != nil {
		return solver.StatusUnknown, err
	}

	var provider catalog.Provider
	switch opts.catalogSource {
	case "postgres":
		pg, err := catalog.NewPostgresProvider(cfg.PostgresDSN, weekStart, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
		if err != nil {
			return solver.StatusUnknown, fmt.Errorf("connect postgres catalog: %w", err)
		}
		defer pg.Close()
		provider = pg
	default:
		provider = catalog.NewJSONProvider(opts.programsPath, weekStart)
	}

	programs, _, err := provider.Load()
	if err != nil {
		return solver.StatusUnknown, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded", zap.Int("programs", len(programs)), zap.Time("week_start", weekStart))

	pre, err := gridmodel.Build(programs, weekStart, metrics)
	if err != nil {
		return solver.StatusUnknown, fmt.Errorf("precompute: %w", err)
	}

	var backend solver.Backend
	switch opts.backendName {
	case "findomain":
		backend = findomain.New()
	default:
		backend = cpsat.New()
	}

	drv := solver.NewDriver(backend, logger, metrics)
	params := solver.Params{
		TimeLimitSeconds: opts.timeLimit.Seconds(),
		RelativeGap:      opts.gap,
		Workers:          opts.searchWorkers,
	}

	var hintStore *cache.HintStore
	if cfg.RedisAddr != "" {
		if hs, err := cache.NewHintStore(cfg.RedisAddr); err != nil {
			logger.Warn("hint cache unavailable, continuing without it", zap.Error(err))
		} else {
			hintStore = hs
			defer hintStore.Close()
			if opts.hintPath == "" {
				if cached, err := hintStore.Load(weekStart.Format("2006-01-02"), pre.ProgIndex); err == nil && cached != nil {
					params.Hints = cached
					metrics.IncrementHintSource("redis")
					logger.Info("seeded warm-start hints from redis", zap.Int("count", len(cached)))
				}
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeLimit+30*time.Second)
	defer cancel()

	result, err := drv.Run(ctx, pre, params, opts.hintPath)
	if err != nil {
		return solver.StatusUnknown, fmt.Errorf("solve: %w", err)
	}

	schedule := materialize.Materialize(pre, result, backend.Name(), weekStart)

	if err := export.WriteJSON(opts.outPath, schedule); err != nil {
		return result.Status, fmt.Errorf("write schedule: %w", err)
	}
	if opts.printTable {
		export.WriteTable(os.Stdout, schedule)
	}

	if hintStore != nil {
		progID := func(idx int) string { return pre.Programs[idx].ID }
		if err := hintStore.Save(weekStart.Format("2006-01-02"), result.Starts, progID); err != nil {
			logger.Warn("failed to persist hints to redis", zap.Error(err))
		}
	}
	if err := solver.WriteHints(defaultHintOutPath(opts.outPath), pre, result.Starts); err != nil {
		logger.Warn("failed to write hint file", zap.Error(err))
	}

	if cfg.ClickHouseDSN != "" {
		if history, err := analytics.InitClickHouse(cfg.ClickHouseDSN, metrics); err != nil {
			logger.Warn("analytics history unavailable, continuing without it", zap.Error(err))
		} else {
			defer history.Close()
			if err := history.RecordRun(ctx, weekStart, schedule); err != nil {
				logger.Warn("failed to record schedule run", zap.Error(err))
			}
		}
	}

	if opts.metricsAddr != "" {
		srv := server.NewServer(logger)
		srv.LastRun.Set(schedule)
		go func() {
			if err := srv.Serve(opts.metricsAddr); err != nil {
				logger.Error("debug server stopped", zap.Error(err))
			}
		}()
		<-ctx.Done()
	}

	logger.Info("solve finished",
		zap.String("status", string(result.Status)),
		zap.Int("objective", result.Objective),
		zap.String("out", opts.outPath),
	)
	return result.Status, nil
}

func defaultHintOutPath(outPath string) string {
	return outPath + ".hints.json"
}

func resolveWeekStart(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		offset := (int(time.Monday) - int(now.Weekday()) + 7) % 7
		if offset == 0 {
			offset = 7
		}
		monday := now.AddDate(0, 0, offset)
		return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --week-start: %w", err)
	}
	return t, nil
}
