package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/pseudotv/internal/library"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Browse the local catalog",
	Long: `Browse the local catalog.

These commands read the database directly and do not need the daemon.`,
}

var libraryShowsCmd = &cobra.Command{
	Use:   "shows",
	Short: "List shows and their cursors",
	Args:  cobra.NoArgs,
	RunE:  runLibraryShowsCmd,
}

var libraryMediaCmd = &cobra.Command{
	Use:       "media <movies|videos|music|commercials>",
	Short:     "List a flat catalog",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"movies", "videos", "music", "commercials"},
	RunE:      runLibraryMediaCmd,
}

var libraryFindCmd = &cobra.Command{
	Use:   "find <title>",
	Short: "Find the show whose title best matches",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryFindCmd,
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryShowsCmd)
	libraryCmd.AddCommand(libraryMediaCmd)
	libraryCmd.AddCommand(libraryFindCmd)

	libraryShowsCmd.Flags().String("section", "", "Only this section")
	libraryMediaCmd.Flags().String("section", "", "Only this section")
	libraryMediaCmd.Flags().Int("limit", 0, "Maximum rows (0 = all)")
}

func sectionFlag(cmd *cobra.Command) *string {
	s, _ := cmd.Flags().GetString("section")
	if s == "" {
		return nil
	}
	return &s
}

func runLibraryShowsCmd(cmd *cobra.Command, args []string) error {
	_, db, _, err := openLocal()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	shows, err := library.NewStore(db).ListShows(library.ShowFilter{Section: sectionFlag(cmd)})
	if err != nil {
		return fmt.Errorf("list shows: %w", err)
	}

	if jsonOutput {
		printJSON(shows)
		return nil
	}
	if len(shows) == 0 {
		fmt.Println("No shows")
		return nil
	}
	fmt.Printf("Shows (%d):\n\n", len(shows))
	fmt.Printf("  %-40s │ %-12s │ %s\n", "TITLE", "SECTION", "CURSOR")
	fmt.Println("  " + strings.Repeat("─", 80))
	for _, sh := range shows {
		cursor := sh.Cursor
		if cursor == "" {
			cursor = "-"
		}
		fmt.Printf("  %-40s │ %-12s │ %s\n", truncate(sh.Title, 40), truncate(sh.Section, 12), cursor)
	}
	return nil
}

func runLibraryMediaCmd(cmd *cobra.Command, args []string) error {
	kind := library.Kind(args[0])
	if !kind.Valid() {
		return fmt.Errorf("unknown kind %q", args[0])
	}
	limit, _ := cmd.Flags().GetInt("limit")

	_, db, _, err := openLocal()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	items, err := library.NewStore(db).ListMedia(kind, library.MediaFilter{Section: sectionFlag(cmd), Limit: limit})
	if err != nil {
		return fmt.Errorf("list %s: %w", kind, err)
	}

	if jsonOutput {
		printJSON(items)
		return nil
	}
	if len(items) == 0 {
		fmt.Printf("No %s\n", kind)
		return nil
	}
	fmt.Printf("%s (%d):\n\n", strings.ToUpper(string(kind[:1]))+string(kind[1:]), len(items))
	fmt.Printf("  %-40s │ %-9s │ %-12s │ %s\n", "TITLE", "LENGTH", "SECTION", "LAST PLAYED")
	fmt.Println("  " + strings.Repeat("─", 85))
	for _, m := range items {
		played := m.LastPlayedDate
		if played == "" {
			played = "-"
		}
		fmt.Printf("  %-40s │ %-9s │ %-12s │ %s\n", truncate(m.Title, 40), formatMs(m.Duration), truncate(m.Section, 12), played)
	}
	return nil
}

func runLibraryFindCmd(cmd *cobra.Command, args []string) error {
	_, db, _, err := openLocal()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	store := library.NewStore(db)
	sh, err := store.FindShow(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(sh)
		return nil
	}
	fmt.Printf("Show:    %s\n", sh.Title)
	fmt.Printf("Section: %s\n", sh.Section)
	if sh.Cursor != "" {
		fmt.Printf("Cursor:  %s\n", sh.Cursor)
	}
	return nil
}
