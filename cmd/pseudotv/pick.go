package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pickCmd = &cobra.Command{
	Use:   "pick <category>",
	Short: "Pick a random item by duration",
	Long: `Pick a random item whose length falls within a range.

Categories: movies, episodes, videos, music, commercials.

Examples:
  pseudotv pick movies --max 2h
  pseudotv pick commercials --min 15s --max 1m`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"movies", "episodes", "videos", "music", "commercials"},
	RunE:      runPickCmd,
}

func init() {
	rootCmd.AddCommand(pickCmd)
	pickCmd.Flags().Duration("min", 0, "Minimum length")
	pickCmd.Flags().Duration("max", 0, "Maximum length (default unbounded)")
}

func runPickCmd(cmd *cobra.Command, args []string) error {
	minDur, _ := cmd.Flags().GetDuration("min")
	maxDur, _ := cmd.Flags().GetDuration("max")

	client := NewClient(serverURL)
	item, err := client.Pick(args[0], minDur, maxDur)
	if IsCode(err, "NOT_FOUND") {
		return fmt.Errorf("no %s between %s and %s", args[0], minDur, describeMax(maxDur))
	}
	if err != nil {
		return fmt.Errorf("pick: %w", err)
	}

	if jsonOutput {
		printJSON(item)
		return nil
	}
	title := item.Title
	if item.ShowTitle != "" {
		title = item.ShowTitle + " - " + item.Title
	}
	fmt.Printf("%s (%s)\n", title, formatMs(item.DurationMs))
	return nil
}

func describeMax(d time.Duration) string {
	if d <= 0 {
		return "any length"
	}
	return d.String()
}
