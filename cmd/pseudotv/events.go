package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/pseudotv/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent events",
	Long: `Show recent channel events.

Examples:
  pseudotv events
  pseudotv events -n 100
  pseudotv events --entity show/Cheers
  pseudotv events --since 24h`,
	Args: cobra.NoArgs,
	RunE: runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().String("entity", "", "Only events for TYPE/KEY, e.g. show/Cheers")
	eventsCmd.Flags().Duration("since", 0, "Only events from the last DURATION, oldest first")
}

func runEventsCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	entity, _ := cmd.Flags().GetString("entity")
	window, _ := cmd.Flags().GetDuration("since")

	var entityType, entityKey string
	if entity != "" {
		var ok bool
		entityType, entityKey, ok = strings.Cut(entity, "/")
		if !ok || entityType == "" || entityKey == "" {
			return fmt.Errorf("--entity must be TYPE/KEY, got %q", entity)
		}
	}

	client := NewClient(serverURL)
	var since time.Time
	if window > 0 {
		since = time.Now().Add(-window)
	}
	list, err := client.Events(limit, entityType, entityKey, since)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	if jsonOutput {
		printJSON(list)
		return nil
	}

	if len(list.Items) == 0 {
		fmt.Println("No events")
		return nil
	}

	registry := events.DefaultRegistry()
	now := time.Now()

	fmt.Printf("Recent Events (%d):\n\n", list.Total)
	fmt.Printf("  %-12s %-18s %s\n", "TIME", "TYPE", "DETAIL")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, e := range list.Items {
		ago := e.OccurredAt
		if t, err := time.Parse(time.RFC3339, e.OccurredAt); err == nil {
			ago = formatTimeAgo(t, now)
		}
		fmt.Printf("  %-12s %-18s %s\n", ago, e.EventType, describeEvent(registry, e))
	}
	return nil
}

// describeEvent summarizes an event's payload, falling back to its entity
// for unknown types.
func describeEvent(reg *events.Registry, e EventResponse) string {
	ev, err := reg.Unmarshal(events.RawEvent{EventType: e.EventType, Payload: e.Payload})
	if err != nil {
		return e.EntityType + "/" + e.EntityKey
	}
	switch ev := ev.(type) {
	case *events.EpisodeAdvanced:
		code := episodeCode(ev.SeasonNumber, ev.EpisodeNumber)
		if code != "" {
			code = " " + code
		}
		return fmt.Sprintf("%s%s - %s", ev.ShowTitle, code, ev.EpisodeTitle)
	case *events.SeriesWrapped:
		return fmt.Sprintf("%s restarted from the first episode", ev.ShowTitle)
	case *events.CursorRecovered:
		return fmt.Sprintf("%s: cursor %q matched nothing, restarted", ev.ShowTitle, ev.Cursor)
	case *events.ScheduleRebuilt:
		return fmt.Sprintf("%s: %d entries, %d skipped", ev.Day, ev.Entries, ev.Skipped)
	case *events.LibrarySynced:
		return fmt.Sprintf("%d shows, %d episodes, %d movies, %d videos, %d music, %d commercials, %d playlist entries",
			ev.Shows, ev.Episodes, ev.Movies, ev.Videos, ev.Music, ev.Commercials, ev.Playlist)
	}
	return e.EntityType + "/" + e.EntityKey
}
