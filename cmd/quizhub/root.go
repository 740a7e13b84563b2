// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the QuizHub CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quizhub",
		Short: "QuizHub - a multilingual quiz server",
		Long: `QuizHub serves quiz questions on algebra, chemistry, geometry and physics,
keeps per-subject scores for registered players and shows a leaderboard.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
