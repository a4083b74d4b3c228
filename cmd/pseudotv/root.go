package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	jsonOutput bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "pseudotv",
	Short: "CLI for the pseudotv channel daemon",
	Long: `pseudotv - CLI for the pseudotv channel daemon

Inspect what is on air, browse the schedule, advance shows and pull
random picks from a running daemon. Library and config commands work
directly against the local database and config file.

Run 'pseudotvd' to start the daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8484", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: search standard locations)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("pseudotv {{.Version}}\n")
}
