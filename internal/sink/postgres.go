package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/fifa-crawler/internal/crawler"
)

const defaultTable = "crawl_records"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the connection pool used for record rows.
type PostgresConfig struct {
	DSN      string
	Table    string
	MaxConns int32
	RunID    string
	Pipeline crawler.Pipeline
	Clock    crawler.Clock
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// Postgres inserts one row per record.
type Postgres struct {
	pool     execCloser
	table    string
	runID    string
	pipeline crawler.Pipeline
	clock    crawler.Clock
}

// NewPostgres connects to the database named by cfg.DSN.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store, err := NewPostgresWithPool(pool, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresWithPool constructs the sink from an existing pool (primarily for testing).
func NewPostgresWithPool(pool execCloser, cfg PostgresConfig) (*Postgres, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	return &Postgres{
		pool:     pool,
		table:    table,
		runID:    cfg.RunID,
		pipeline: cfg.Pipeline,
		clock:    cfg.Clock,
	}, nil
}

// Write inserts the record as a JSON payload.
func (s *Postgres) Write(ctx context.Context, record any) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	key := ""
	if keyed, ok := record.(crawler.Keyed); ok {
		key = keyed.Key()
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	record_key,
	pipeline,
	payload,
	emitted_at
) VALUES (
	$1,$2,$3,$4,$5
)`, s.table)
	args := []any{
		s.runID,
		key,
		string(s.pipeline),
		payload,
		s.clock.Now().UTC().Truncate(time.Microsecond),
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Postgres) Close(context.Context) error {
	s.pool.Close()
	return nil
}
