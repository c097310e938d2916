// Package storage persists posts, job logs and application settings in
// PostgreSQL.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jbplumbing/autopost/internal/platform/config"
	"github.com/jbplumbing/autopost/internal/platform/worker"
	"github.com/jbplumbing/autopost/migrations"
)

const (
	connectRetries    = 10
	connectRetryDelay = 2 * time.Second
	migrationLockID   = 1000
)

type DB struct {
	Pool *pgxpool.Pool
}

// New connects the pool, retrying while the database comes up.
func New(ctx context.Context, cfg *config.Config) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	poolCfg.MaxConns = cfg.DBMaxConnections
	poolCfg.MinConns = cfg.DBMinConnections
	poolCfg.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolCfg.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.DBHealthCheckPeriod

	var pool *pgxpool.Pool

	for i := 0; i < connectRetries; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &DB{Pool: pool}, nil
			}
		}

		if pool != nil {
			pool.Close()
		}

		if waitErr := worker.Wait(ctx, connectRetryDelay); waitErr != nil {
			return nil, fmt.Errorf("connect aborted: %w", waitErr)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
}

func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate applies pending migrations under an advisory lock so concurrent
// instances do not race.
func (db *DB) Migrate(ctx context.Context) error {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return err
	}

	defer func() {
		_, _ = conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID)
	}()

	dbSQL := stdlib.OpenDB(*db.Pool.Config().ConnConfig)

	defer func() {
		_ = dbSQL.Close()
	}()

	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.Up(dbSQL, ".")
}
