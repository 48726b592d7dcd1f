package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PoolConfig carries the connection settings of the portal database.
type PoolConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
	// HealthCheckPeriod is how often idle connections are checked; zero keeps
	// the pgx default.
	HealthCheckPeriod time.Duration
	// ApplicationName shows up in pg_stat_activity.
	ApplicationName string
	// SearchPath pins every connection to a schema, for example the one a
	// Migrator targeted with WithSchema. Empty leaves the server default.
	SearchPath string
	// QueryLogger, when set, receives one debug event per statement.
	QueryLogger *zerolog.Logger
}

// ParsePoolConfig turns pc into a pgxpool configuration without connecting.
func ParsePoolConfig(pc PoolConfig) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(pc.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}
	if pc.MinConns > 0 {
		cfg.MinConns = pc.MinConns
	}
	if pc.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = pc.HealthCheckPeriod
	}
	if pc.ApplicationName != "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = pc.ApplicationName
	}
	if pc.SearchPath != "" {
		cfg.ConnConfig.RuntimeParams["search_path"] = pc.SearchPath
	}
	if pc.QueryLogger != nil {
		cfg.ConnConfig.Tracer = &QueryTracer{logger: *pc.QueryLogger}
	}
	return cfg, nil
}

// NewPool opens a pool and verifies the database answers.
func NewPool(ctx context.Context, pc PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := ParsePoolConfig(pc)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

type queryStartKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

// QueryTracer logs each statement with its duration, affected rows and error.
type QueryTracer struct {
	logger zerolog.Logger
	now    func() time.Time
}

func (t *QueryTracer) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, at: t.clock()})
}

func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	evt := t.logger.Debug()
	if data.Err != nil {
		evt = t.logger.Warn().Err(data.Err)
	}
	evt.Str("sql", start.sql).
		Dur("duration", t.clock().Sub(start.at)).
		Int64("rows", data.CommandTag.RowsAffected()).
		Msg("query")
}
