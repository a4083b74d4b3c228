package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/pseudotv/internal/events"
	"github.com/vmunix/pseudotv/internal/importer"
	"github.com/vmunix/pseudotv/internal/library"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Sync the local catalog from Plex",
	Long: `Sync the local catalog from the Plex sections named in the config.

Shows keep their cursors across syncs. Runs against the local database
and does not need the daemon.`,
	Args: cobra.NoArgs,
	RunE: runImportCmd,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	cfg, db, logger, err := openLocal()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if cfg.Plex == nil {
		return errors.New("no [plex] section in config")
	}

	sections := make([]importer.SectionConfig, len(cfg.Plex.Sections))
	for i, s := range cfg.Plex.Sections {
		sections[i] = importer.SectionConfig{Name: s.Name, Kind: s.Kind, CustomSection: s.CustomSection}
	}

	bus := events.NewBus(events.NewEventLog(db), logger)
	defer func() { _ = bus.Close() }()

	client := importer.NewPlexClient(cfg.Plex.URL, cfg.Plex.Token, logger)
	imp := importer.New(client, library.NewStore(db), sections, bus, logger)

	counts, err := imp.Sync(cmd.Context())
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	if jsonOutput {
		printJSON(counts)
		return nil
	}
	fmt.Println("Import complete:")
	fmt.Printf("  Shows:       %d (%d episodes)\n", counts.Shows, counts.Episodes)
	fmt.Printf("  Movies:      %d\n", counts.Movies)
	fmt.Printf("  Videos:      %d\n", counts.Videos)
	fmt.Printf("  Music:       %d\n", counts.Music)
	fmt.Printf("  Commercials: %d\n", counts.Commercials)
	fmt.Printf("  Playlists:   %d entries\n", counts.Playlist)
	return nil
}
