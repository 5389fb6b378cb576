// Package config holds environment-derived configuration for the grid
// planner service and CLI, following the same getenv/envX helper pattern
// used throughout the rest of the codebase.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for a single grid-planning run. CLI flags in
// cmd/gridplanner override these defaults; Load only fills in environment
// or built-in defaults.
type Config struct {
	ProgramsPath  string
	CatalogSource string // "json" or "postgres"
	PostgresDSN   string

	Solver    string // "cpsat" or "findomain"
	TimeLimit time.Duration
	Gap       float64
	HintPath  string
	WeekStart string
	OutPath   string

	SearchWorkers int

	RedisAddr     string
	ClickHouseDSN string

	MetricsAddr       string
	ServiceName       string
	TracingEnabled    bool
	TracingEndpoint   string
	TracingSampleRate float64

	// Database connection pooling, mirrored from the ad-serving service so
	// the Postgres catalog provider behaves the same under load.
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}

	cfg.ProgramsPath = getenv("GRIDPLANNER_PROGRAMS", "programs.json")
	cfg.CatalogSource = getenv("GRIDPLANNER_CATALOG_SOURCE", "json")
	cfg.PostgresDSN = getenv("POSTGRES_DSN", "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable")

	cfg.Solver = getenv("GRIDPLANNER_SOLVER", "cpsat")
	cfg.TimeLimit = envDuration("GRIDPLANNER_TIME_LIMIT", 600*time.Second)
	cfg.Gap = envFloat("GRIDPLANNER_GAP", 0.001)
	cfg.HintPath = getenv("GRIDPLANNER_HINT", "")
	cfg.WeekStart = getenv("GRIDPLANNER_WEEK_START", "")
	cfg.OutPath = getenv("GRIDPLANNER_OUT", "schedule.json")

	cfg.SearchWorkers = envInt("GRIDPLANNER_SEARCH_WORKERS", 8)

	cfg.RedisAddr = getenv("REDIS_ADDR", "localhost:6379")
	cfg.ClickHouseDSN = getenv("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000/default?async_insert=1&wait_for_async_insert=1")

	cfg.MetricsAddr = getenv("METRICS_ADDR", "")
	cfg.ServiceName = getenv("SERVICE_NAME", "gridplanner")
	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TracingEndpoint = getenv("TEMPO_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0)

	cfg.DBMaxOpenConns = envInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = envInt("DB_MAX_IDLE_CONNS", 5)
	cfg.DBConnMaxLifetime = envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	cfg.DBConnMaxIdleTime = envDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute)

	return cfg
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration. The value
// can be a duration string (e.g. "5s") or a number of seconds. If the
// variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. When unset or invalid, def
// is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def
// is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def
// is returned.
func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return def
}
