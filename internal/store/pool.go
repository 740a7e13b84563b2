// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

// Package store owns the PostgreSQL connection pool and the accounts schema.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection defaults.
const (
	DefaultConnectAttempts = 5
	DefaultConnectBackoff  = 500 * time.Millisecond
	maxConnectBackoff      = 5 * time.Second
)

// PoolConfig tunes how the pool is opened.
type PoolConfig struct {
	// MaxConns caps the pool size. Zero keeps the pgx default.
	MaxConns int32

	// ConnectAttempts is the number of retries after the first failed ping.
	ConnectAttempts uint64

	// ConnectBackoff is the first retry delay; it doubles up to five seconds.
	ConnectBackoff time.Duration

	Logger *slog.Logger
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = DefaultConnectAttempts
	}
	if c.ConnectBackoff <= 0 {
		c.ConnectBackoff = DefaultConnectBackoff
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// pinger is satisfied by *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}

// OpenPool parses dsn, opens a pool and pings it, retrying with exponential
// backoff while the database is still coming up.
func OpenPool(ctx context.Context, dsn string, cfg PoolConfig) (*pgxpool.Pool, error) {
	cfg = cfg.withDefaults()

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse dsn").Wrap(err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	if err := waitReady(ctx, pool, cfg); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func waitReady(ctx context.Context, db pinger, cfg PoolConfig) error {
	backoff := retry.WithMaxRetries(cfg.ConnectAttempts,
		retry.WithCappedDuration(maxConnectBackoff, retry.NewExponential(cfg.ConnectBackoff)))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := db.Ping(ctx); err != nil {
			cfg.Logger.WarnContext(ctx, "database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping database").
			With("attempts", attempt).
			Wrap(err)
	}
	return nil
}
