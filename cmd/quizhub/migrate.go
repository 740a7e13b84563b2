// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quizhub/quizhub/internal/config"
	"github.com/quizhub/quizhub/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return newMigrateCmdWithDeps(nil)
}

func newMigrateCmdWithDeps(deps *MigrateDeps) *cobra.Command {
	if deps == nil {
		deps = &MigrateDeps{}
	}
	if deps.MigratorFactory == nil {
		deps.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply, roll back or inspect database migrations. The database is taken from
DATABASE_URL, or assembled from the POSTGRES_* environment variables.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(deps, func(m Migrator) error {
				cmd.Println("Running migrations...")
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Long:  `Roll back the last --steps migrations, or all of them with --all.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all") //nolint:errcheck // flag is defined below
			if !all && steps < 1 {
				return oops.Code("INVALID_STEPS").Errorf("--steps must be at least 1, got %d", steps)
			}
			return withMigrator(deps, func(m Migrator) error {
				if all {
					cmd.Println("Rolling back all migrations...")
					if err := m.Down(); err != nil {
						return err
					}
				} else {
					cmd.Printf("Rolling back %d migration(s)...\n", steps)
					if err := m.Steps(-steps); err != nil {
						return err
					}
				}
				cmd.Println("Rollback completed")
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	down.Flags().Bool("all", false, "roll back every migration (drops all data)")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(deps, func(m Migrator) error {
				st, err := m.Status()
				if err != nil {
					return err
				}
				printStatus(cmd, st)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(deps, func(m Migrator) error {
				st, err := m.Status()
				if err != nil {
					return err
				}
				if st.Dirty {
					cmd.Printf("%d (dirty)\n", st.Version)
				} else {
					cmd.Printf("%d\n", st.Version)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied without running it",
		Long:  `Record VERSION as the current schema version and clear the dirty flag. Use after repairing a failed migration by hand.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(deps, func(m Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				cmd.Printf("Forced schema version to %d\n", version)
				return nil
			})
		},
	})

	return cmd
}

// withMigrator opens a migrator for the configured database, runs fn and
// closes the migrator.
func withMigrator(deps *MigrateDeps, fn func(Migrator) error) (err error) {
	environ, err := config.LoadEnv(deps.Environ)
	if err != nil {
		return err
	}

	m, err := deps.MigratorFactory(environ.DSN())
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(m)
}

func printStatus(cmd *cobra.Command, st *store.Status) {
	state := "clean"
	if st.Dirty {
		state = "dirty"
	}
	cmd.Printf("Current version: %d (%s)\n", st.Version, state)
	for _, v := range st.Applied {
		cmd.Printf("  [applied] %s\n", migrationLabel(v))
	}
	for _, v := range st.Pending {
		cmd.Printf("  [pending] %s\n", migrationLabel(v))
	}
}

func migrationLabel(version uint) string {
	name, err := store.MigrationName(version)
	if err != nil || name == "" {
		return fmt.Sprintf("%06d", version)
	}
	return name
}

// parseForceVersion parses the VERSION argument of migrate force.
func parseForceVersion(s string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &version); err != nil {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Wrapf(err, "version must be an integer")
	}
	if version < 0 {
		return 0, oops.Code("INVALID_VERSION").With("input", s).Errorf("version must be non-negative, got %d", version)
	}
	return version, nil
}
