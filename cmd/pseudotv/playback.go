package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Show what is on air",
	Args:  cobra.NoArgs,
	RunE:  runNowCmd,
}

var upNextCmd = &cobra.Command{
	Use:   "upnext",
	Short: "Show the next entries on the daily schedule",
	Args:  cobra.NoArgs,
	RunE:  runUpNextCmd,
}

func init() {
	rootCmd.AddCommand(nowCmd)
	rootCmd.AddCommand(upNextCmd)
	upNextCmd.Flags().IntP("count", "n", 5, "Number of entries to show")
}

func runNowCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	np, err := client.NowPlaying()
	if IsCode(err, "NOTHING_PLAYING") {
		fmt.Println("Nothing is on air right now")
		return nil
	}
	if err != nil {
		return fmt.Errorf("now playing: %w", err)
	}

	if jsonOutput {
		printJSON(np)
		return nil
	}

	fmt.Printf("On air:    %s\n", displayTitle(np.EntryResponse))
	fmt.Printf("Section:   %s\n", np.Section)
	fmt.Printf("Slot:      %s - %s\n", np.Start, np.End)
	fmt.Printf("Remaining: %s\n", formatMs(np.RemainingMs))
	return nil
}

func runUpNextCmd(cmd *cobra.Command, args []string) error {
	n, _ := cmd.Flags().GetInt("count")

	client := NewClient(serverURL)
	list, err := client.UpNext(n)
	if err != nil {
		return fmt.Errorf("up next: %w", err)
	}

	if jsonOutput {
		printJSON(list)
		return nil
	}
	printEntries(list.Items, "Nothing else scheduled today")
	return nil
}

func displayTitle(e EntryResponse) string {
	if e.ShowTitle == "" {
		return e.Title
	}
	title := e.ShowTitle
	if code := episodeCode(e.SeasonNumber, e.EpisodeNumber); code != "" {
		title += " " + code
	}
	return title + " - " + e.Title
}

func printEntries(items []EntryResponse, empty string) {
	if len(items) == 0 {
		fmt.Println(empty)
		return
	}
	fmt.Printf("  %-8s │ %-8s │ %-12s │ %s\n", "START", "END", "SECTION", "TITLE")
	fmt.Println("  " + strings.Repeat("─", 9) + "┼" + strings.Repeat("─", 10) + "┼" + strings.Repeat("─", 14) + "┼" + strings.Repeat("─", 40))
	for _, e := range items {
		fmt.Printf("  %-8s │ %-8s │ %-12s │ %s\n", e.Start, e.End, truncate(e.Section, 12), truncate(displayTitle(e), 60))
	}
}
