// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quizhub/quizhub/internal/observability"
	"github.com/quizhub/quizhub/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// PoolOpener connects to PostgreSQL.
	// Default: store.OpenPool
	PoolOpener func(ctx context.Context, dsn string, cfg store.PoolConfig) (Pool, error)

	// MigratorFactory creates the migrator used for auto-migration.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (AutoMigrator, error)

	// ObservabilityServerFactory creates the metrics and health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, gatherer prometheus.Gatherer, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// Listen opens the HTTP listener.
	// Default: net.Listen
	Listen func(network, address string) (net.Listener, error)

	// Environ replaces the process environment.
	// Default: nil (read the process environment)
	Environ map[string]string

	// LogWriter receives the structured log.
	// Default: os.Stderr
	LogWriter io.Writer

	// Signals delivers shutdown signals.
	// Default: SIGINT and SIGTERM
	Signals <-chan os.Signal
}

// MigrateDeps contains injectable dependencies for the migrate command.
type MigrateDeps struct {
	// MigratorFactory creates a migrator for a database URL.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// Environ replaces the process environment.
	Environ map[string]string
}

// Pool wraps the *pgxpool.Pool methods used by serve.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// AutoMigrator wraps the migrator methods used at startup.
type AutoMigrator interface {
	Up() error
	Close() error
}

// Migrator wraps the store.Migrator methods used by the migrate command.
type Migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
	Status() (*store.Status, error)
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}
