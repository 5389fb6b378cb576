package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// programsSchemaSQL creates the catalog table if it does not already exist,
// mirroring Program's fields except the list-valued preferred/forbidden
// slots, compatible/incompatible genres and target audience, which have no
// columns.
const programsSchemaSQL = `CREATE TABLE IF NOT EXISTS programs (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    genre TEXT NOT NULL,
    subgenre TEXT,
    duration_minutes INT NOT NULL,
    cost INT NOT NULL,
    base_audience INT NOT NULL,
    origin TEXT,
    year INT,
    age_rating TEXT,
    independent BOOLEAN NOT NULL DEFAULT FALSE,
    in_production BOOLEAN NOT NULL DEFAULT FALSE,
    rights_start DATE,
    rights_end DATE,
    last_broadcast_date DATE,
    min_rerun_days INT,
    season INT,
    episode INT,
    total_episodes INT,
    max_episodes_per_week INT,
    usual_day INT,
    usual_time TEXT,
    previous_episode TEXT,
    is_new BOOLEAN NOT NULL DEFAULT FALSE,
    is_exclusive BOOLEAN NOT NULL DEFAULT FALSE,
    first_broadcast BOOLEAN NOT NULL DEFAULT FALSE,
    health_magazine BOOLEAN NOT NULL DEFAULT FALSE,
    fixed_time TEXT,
    fixed_days INT[]
);`

// PostgresProvider loads the catalog from a Postgres table, instrumented
// with otelsql the same way the rest of the pipeline traces its I/O.
type PostgresProvider struct {
	DB        *sql.DB
	WeekStart time.Time
}

// NewPostgresProvider opens a connection pool against dsn and ensures the
// programs table exists.
func NewPostgresProvider(dsn string, weekStart time.Time, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*PostgresProvider, error) {
	driverName, err := otelsql.Register("postgres",
		otelsql.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.connection_string", dsn),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("catalog: postgres open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("catalog: postgres ping: %w", err)
	}

	p := &PostgresProvider{DB: db, WeekStart: weekStart}
	if _, err := db.ExecContext(context.Background(), programsSchemaSQL); err != nil {
		return nil, fmt.Errorf("catalog: ensure schema: %w", err)
	}

	zap.L().Info("connected to postgres catalog",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns))
	return p, nil
}

// Close terminates the connection pool.
func (p *PostgresProvider) Close() {
	if p != nil && p.DB != nil {
		if err := p.DB.Close(); err != nil {
			zap.L().Error("catalog: postgres close", zap.Error(err))
		}
	}
}

// Load retrieves every program row from the programs table.
func (p *PostgresProvider) Load() ([]Program, time.Time, error) {
	rows, err := p.DB.QueryContext(context.Background(), `SELECT
		id, title, genre, subgenre, duration_minutes, cost, base_audience,
		origin, year, age_rating, independent, in_production,
		rights_start, rights_end, last_broadcast_date, min_rerun_days,
		season, episode, total_episodes, max_episodes_per_week,
		usual_day, usual_time, previous_episode,
		is_new, is_exclusive, first_broadcast, health_magazine,
		fixed_time, fixed_days
		FROM programs`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("catalog: query programs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var programs []Program
	for rows.Next() {
		var prog Program
		var subgenre, origin, ageRating, usualTime, previousEpisode, fixedTime sql.NullString
		var year sql.NullInt64
		var rightsStart, rightsEnd, lastBroadcast sql.NullTime
		var minRerunDays, season, episode, totalEpisodes, maxEpisodesPerWeek, usualDay sql.NullInt64
		var fixedDays []int64

		if err := rows.Scan(
			&prog.ID, &prog.Title, &prog.Genre, &subgenre, &prog.DurationMinutes, &prog.Cost, &prog.BaseAudience,
			&origin, &year, &ageRating, &prog.Independent, &prog.InProduction,
			&rightsStart, &rightsEnd, &lastBroadcast, &minRerunDays,
			&season, &episode, &totalEpisodes, &maxEpisodesPerWeek,
			&usualDay, &usualTime, &previousEpisode,
			&prog.IsNew, &prog.IsExclusive, &prog.FirstBroadcast, &prog.HealthMagazine,
			&fixedTime, &fixedDays,
		); err != nil {
			return nil, time.Time{}, fmt.Errorf("catalog: scan program: %w", err)
		}

		if subgenre.Valid {
			prog.Subgenre = subgenre.String
		}
		if origin.Valid {
			prog.Origin = origin.String
		}
		if year.Valid {
			prog.Year = int(year.Int64)
		}
		if ageRating.Valid {
			prog.AgeRating = ageRating.String
		}
		if rightsStart.Valid {
			t := rightsStart.Time
			prog.RightsStart = &t
		}
		if rightsEnd.Valid {
			t := rightsEnd.Time
			prog.RightsEnd = &t
		}
		if lastBroadcast.Valid {
			t := lastBroadcast.Time
			prog.LastBroadcastDate = &t
		}
		if minRerunDays.Valid {
			v := int(minRerunDays.Int64)
			prog.MinRerunDays = &v
		}
		if season.Valid {
			v := int(season.Int64)
			prog.Season = &v
		}
		if episode.Valid {
			v := int(episode.Int64)
			prog.Episode = &v
		}
		if totalEpisodes.Valid {
			v := int(totalEpisodes.Int64)
			prog.TotalEpisodes = &v
		}
		if maxEpisodesPerWeek.Valid {
			v := int(maxEpisodesPerWeek.Int64)
			prog.MaxEpisodesPerWeek = &v
		}
		if usualDay.Valid {
			v := int(usualDay.Int64)
			prog.UsualDay = &v
		}
		if usualTime.Valid {
			v := usualTime.String
			prog.UsualTime = &v
		}
		if previousEpisode.Valid {
			v := previousEpisode.String
			prog.PreviousEpisode = &v
		}
		if fixedTime.Valid {
			v := fixedTime.String
			prog.FixedTime = &v
		}
		for _, d := range fixedDays {
			prog.FixedDays = append(prog.FixedDays, int(d))
		}

		programs = append(programs, prog)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("catalog: iterate programs: %w", err)
	}

	return programs, p.WeekStart, nil
}
