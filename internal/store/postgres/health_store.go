// Package postgres provides Postgres-backed persistence for health runs.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/interviewbot/jobscout/internal/ingest"
)

// HealthStoreConfig controls the Postgres connection pool.
type HealthStoreConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// querier is the subset of pgxpool.Pool the store needs; pgxmock
// implements it in tests.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// HealthStore persists health-check runs. Per-site results are stored as a
// JSONB document; the report is read and written whole.
type HealthStore struct {
	pool querier
}

// NewHealthStore connects a pool and returns the store.
func NewHealthStore(ctx context.Context, cfg HealthStoreConfig) (*HealthStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &HealthStore{pool: pool}, nil
}

// NewHealthStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewHealthStoreWithPool(pool querier) (*HealthStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &HealthStore{pool: pool}, nil
}

const insertReportSQL = `INSERT INTO health_reports (run_id, started_at, failed_sites, sites)
VALUES ($1, $2, $3, $4)`

const listReportsSQL = `SELECT run_id, started_at, sites
FROM health_reports ORDER BY started_at DESC LIMIT $1`

// SaveReport writes one health run.
func (s *HealthStore) SaveReport(ctx context.Context, report ingest.HealthReport) error {
	sites, err := json.Marshal(report.Sites)
	if err != nil {
		return fmt.Errorf("marshal site results: %w", err)
	}
	if _, err := s.pool.Exec(ctx, insertReportSQL,
		report.RunID, report.StartedAt, report.Failed(), sites); err != nil {
		return fmt.Errorf("insert health report: %w", err)
	}
	return nil
}

// ListReports returns the most recent runs, newest first.
func (s *HealthStore) ListReports(ctx context.Context, limit int) ([]ingest.HealthReport, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, listReportsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query health reports: %w", err)
	}
	defer rows.Close()

	var reports []ingest.HealthReport
	for rows.Next() {
		var (
			report ingest.HealthReport
			sites  []byte
		)
		if err := rows.Scan(&report.RunID, &report.StartedAt, &sites); err != nil {
			return nil, fmt.Errorf("scan health report: %w", err)
		}
		if err := json.Unmarshal(sites, &report.Sites); err != nil {
			return nil, fmt.Errorf("unmarshal site results: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate health reports: %w", err)
	}
	return reports, nil
}
