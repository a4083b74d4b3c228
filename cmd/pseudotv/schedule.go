package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Inspect and rebuild the channel schedule",
}

var scheduleDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show today's materialized schedule",
	Args:  cobra.NoArgs,
	RunE:  runScheduleDailyCmd,
}

var scheduleWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Show the weekly template",
	Long: `Show the weekly template.

With --from, the listing starts at that hour of the day and wraps
around midnight, like a TV guide opened mid-day.

Examples:
  pseudotv schedule weekly
  pseudotv schedule weekly --from 18`,
	Args: cobra.NoArgs,
	RunE: runScheduleWeeklyCmd,
}

var scheduleRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Regenerate the daily schedule now",
	Long: `Regenerate the daily schedule from the weekly template.

Examples:
  pseudotv schedule rebuild
  pseudotv schedule rebuild --day 2024-05-04`,
	Args: cobra.NoArgs,
	RunE: runScheduleRebuildCmd,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleDailyCmd)
	scheduleCmd.AddCommand(scheduleWeeklyCmd)
	scheduleCmd.AddCommand(scheduleRebuildCmd)

	scheduleWeeklyCmd.Flags().Int("from", -1, "Start the listing at this hour (0-23)")
	scheduleRebuildCmd.Flags().String("day", "", "Day to plan as YYYY-MM-DD (default today)")
}

func runScheduleDailyCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	list, err := client.DailySchedule()
	if err != nil {
		return fmt.Errorf("daily schedule: %w", err)
	}

	if jsonOutput {
		printJSON(list)
		return nil
	}
	printEntries(list.Items, "Daily schedule is empty")
	return nil
}

func runScheduleWeeklyCmd(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetInt("from")

	client := NewClient(serverURL)
	list, err := client.WeeklySchedule(from)
	if err != nil {
		return fmt.Errorf("weekly schedule: %w", err)
	}

	if jsonOutput {
		printJSON(list)
		return nil
	}
	if len(list.Items) == 0 {
		fmt.Println("Weekly template is empty")
		return nil
	}

	fmt.Printf("  %-8s │ %-8s │ %-20s │ %-12s │ %s\n", "START", "END", "DAYS", "SECTION", "TITLE")
	fmt.Println("  " + strings.Repeat("─", 90))
	for _, w := range list.Items {
		title := w.Title
		if w.StrictTime {
			title += " (strict)"
		}
		fmt.Printf("  %-8s │ %-8s │ %-20s │ %-12s │ %s\n", w.Start, w.End, truncate(w.DayOfWeek, 20), truncate(w.Section, 12), title)
	}
	return nil
}

func runScheduleRebuildCmd(cmd *cobra.Command, args []string) error {
	day, _ := cmd.Flags().GetString("day")

	client := NewClient(serverURL)
	sum, err := client.Rebuild(day)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}

	if jsonOutput {
		printJSON(sum)
		return nil
	}
	fmt.Printf("Rebuilt %s: %d entries (%d commercials), %d slots skipped\n", sum.Day, sum.Entries, sum.Fillers, sum.Skipped)
	return nil
}
