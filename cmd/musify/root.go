package main

import (
	"github.com/spf13/cobra"

	"musify/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the musify CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "musify",
		Short: "musify - a media library backend",
		Long: `musify serves a JSON API for accounts, playlists and tracks,
with token authentication and ordered playlist contents.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
