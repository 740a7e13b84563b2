// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quizhub/quizhub/internal/auth"
	"github.com/quizhub/quizhub/internal/auth/postgres"
	"github.com/quizhub/quizhub/internal/config"
	"github.com/quizhub/quizhub/internal/locale"
	"github.com/quizhub/quizhub/internal/logging"
	"github.com/quizhub/quizhub/internal/observability"
	"github.com/quizhub/quizhub/internal/quiz"
	"github.com/quizhub/quizhub/internal/store"
	"github.com/quizhub/quizhub/internal/web"
	"github.com/quizhub/quizhub/pkg/errutil"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the QuizHub web server",
		Long: `Start the web server. Secrets and the database location come from the
BCRYPT_SALT, JWT_SECRET and DATABASE_URL (or POSTGRES_*) environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.PoolOpener == nil {
		out.PoolOpener = func(ctx context.Context, dsn string, cfg store.PoolConfig) (Pool, error) {
			return store.OpenPool(ctx, dsn, cfg)
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (AutoMigrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, gatherer prometheus.Gatherer, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, gatherer, ready, logger)
		}
	}
	if out.Listen == nil {
		out.Listen = net.Listen
	}
	if out.LogWriter == nil {
		out.LogWriter = os.Stderr
	}
	return &out
}

// runServeWithDeps starts the server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	if ctx == nil {
		ctx = context.Background()
	}
	deps = deps.withDefaults()

	cfg, err := config.Load(config.Source{File: configFile, Flags: cmd.Flags(), Environ: deps.Environ})
	if err != nil {
		return oops.With("operation", "load configuration").Wrap(err)
	}

	logger, err := logging.SetDefault(logging.Options{
		Service: "quizhub",
		Version: version,
		Format:  cfg.LogFormat,
		Level:   cfg.LogLevel,
		Writer:  deps.LogWriter,
	})
	if err != nil {
		return oops.With("operation", "set up logging").Wrap(err)
	}

	if err := locale.CheckCatalog(); err != nil {
		return err
	}

	hasher, codec, err := buildCredentials(cfg)
	if err != nil {
		return err
	}

	bank, err := loadBank(cfg.QuestionsPath)
	if err != nil {
		return err
	}
	logger.Info("question bank loaded", "source", bankSource(cfg.QuestionsPath))

	dsn := cfg.Env.DSN()
	if cfg.AutoMigrate {
		if err := autoMigrate(deps.MigratorFactory, dsn, logger); err != nil {
			return err
		}
	}

	pool, err := deps.PoolOpener(ctx, dsn, store.PoolConfig{Logger: logger})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	accounts := postgres.NewAccountRepository(pool)
	authService, err := auth.NewAuthServiceWithLogger(accounts, hasher, codec, auth.ServiceConfig{
		HonorLoginLocale:    cfg.HonorLoginLocale,
		MaxConcurrentHashes: cfg.MaxConcurrentHashes,
	}, logger)
	if err != nil {
		return oops.With("operation", "create auth service").Wrap(err)
	}
	quizService, err := quiz.NewService(bank, accounts, quiz.WithLogger(logger))
	if err != nil {
		return oops.With("operation", "create quiz service").Wrap(err)
	}

	registry := observability.NewRegistry()
	metrics := observability.NewMetrics(registry)

	handler, err := web.NewHandler(web.Deps{
		Auth:   authService,
		Tokens: codec,
		Scores: accounts,
		Quiz:   quizService,
	},
		web.WithLogger(logger),
		web.WithMetrics(metrics),
		web.WithSecureCookie(cfg.CookieSecure),
	)
	if err != nil {
		return oops.With("operation", "create web handler").Wrap(err)
	}

	listener, err := deps.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return oops.Code("HTTP_LISTEN_FAILED").With("addr", cfg.HTTPAddr).Wrap(err)
	}
	httpServer := &http.Server{
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obsServer ObservabilityServer
	if cfg.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, registry, pool.Ping, logger)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			_ = listener.Close()
			return oops.With("operation", "start observability server").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	signals := deps.Signals
	if signals == nil {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		signals = sigChan
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	cmd.Printf("QuizHub listening on %s\n", listener.Addr())
	logger.Info("http server started", "addr", listener.Addr().String())

	var serveErr error
	select {
	case sig := <-signals:
		logger.Info("received shutdown signal", "signal", sig.String())
	case serveErr = <-errChan:
		errutil.LogError(logger, "http server failed", serveErr)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	if serveErr != nil {
		return oops.Code("HTTP_SERVE_FAILED").Wrap(serveErr)
	}
	logger.Info("shutdown complete")
	return nil
}

func buildCredentials(cfg *config.Config) (*auth.BcryptHasher, *auth.TokenCodec, error) {
	salt, err := auth.DecodeSalt(cfg.Env.BcryptSalt)
	if err != nil {
		return nil, nil, oops.With("operation", "decode BCRYPT_SALT").Wrap(err)
	}
	hasher, err := auth.NewBcryptHasher(salt, auth.WithCost(cfg.BcryptCost))
	if err != nil {
		return nil, nil, oops.With("operation", "create password hasher").Wrap(err)
	}
	codec, err := auth.NewTokenCodec([]byte(cfg.Env.JWTSecret))
	if err != nil {
		return nil, nil, oops.With("operation", "create token codec").Wrap(err)
	}
	return hasher, codec, nil
}

func loadBank(path string) (*quiz.Bank, error) {
	if path == "" {
		return quiz.DefaultBank()
	}
	return quiz.LoadBankFile(path)
}

func bankSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// autoMigrate applies pending migrations before the pool is opened.
func autoMigrate(factory func(string) (AutoMigrator, error), dsn string, logger *slog.Logger) error {
	migrator, err := factory(dsn)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	if err := migrator.Up(); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "apply migrations").Wrap(err)
	}
	logger.Info("database schema up to date")
	return nil
}

// monitorServerErrors cancels ctx when a background server fails.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
