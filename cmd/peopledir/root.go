package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the peopledir CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peopledir",
		Short: "People Directory - organizational directory identity service",
		Long: `People Directory manages the identity and credential lifecycle for an
organizational directory: registration, email verification, login,
password reset, and role-gated profile administration.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
