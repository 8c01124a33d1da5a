package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var cfg *Config

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "arenactl",
		Short: "Operator CLI for the lobby server",
		Long: `arenactl talks to a running lobby server over its
websocket protocol and health endpoint.

It can list joinable rooms, create rooms, watch lobby traffic in
real time, and check server health.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: ARENA_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
