package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/pseudotv/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without starting the daemon.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print which config file would be used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(p)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configPathCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		p, err := resolveConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	fmt.Printf("Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(configErr)
			return errors.New("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(cfg)
	fmt.Println("\nConfiguration valid!")
	return nil
}

func printConfigErrors(e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Println("Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Printf("  - %s\n", m)
		}
		fmt.Println()
	}

	if len(e.Errors) > 0 {
		fmt.Println("Validation errors:")
		for _, msg := range e.Errors {
			fmt.Printf("  - %s\n", msg)
		}
		fmt.Println()
	}
}

func printConfigSummary(cfg *config.Config) {
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Server:   %s:%d (log: %s, %s)\n", cfg.Server.Host, cfg.Server.Port, cfg.Server.LogLevel, cfg.Server.LogFormat)
	fmt.Printf("  Database: %s\n", cfg.Database.Path)
	fmt.Printf("  Channel:  %s [%s] tz=%s rebuild=%s cursor=%s\n",
		cfg.Channel.Name, cfg.Channel.ID, cfg.Channel.Timezone, cfg.Channel.RebuildAt, cfg.Channel.CursorFormat)
	if cfg.Channel.CommercialFill {
		fmt.Printf("  Fill:     commercials %ds-%ds\n", cfg.Channel.CommercialMin, cfg.Channel.CommercialMax)
	}
	if cfg.Plex != nil {
		names := make([]string, len(cfg.Plex.Sections))
		for i, s := range cfg.Plex.Sections {
			names[i] = s.Name + "=" + s.Kind
		}
		fmt.Printf("  Plex:     %s (%s)\n", cfg.Plex.URL, strings.Join(names, ", "))
	}
	if cfg.Guide.Path != "" {
		fmt.Printf("  Guide:    %s\n", cfg.Guide.Path)
	}
}
