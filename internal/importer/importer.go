// Package importer copies a Plex library into the channel's catalog.
package importer

//go:generate mockgen -destination=mocks/mock_importer.go -package=mocks . MediaLibrary,LibraryServer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vmunix/pseudotv/internal/events"
	"github.com/vmunix/pseudotv/internal/library"
	"github.com/vmunix/pseudotv/internal/metrics"
)

const (
	// KindShows marks a section whose items are shows with episodes.
	KindShows = "shows"
	// KindPlaylist marks a server playlist, stored as a show whose episodes
	// are the playlist entries in order.
	KindPlaylist = "playlist"
)

// MediaLibrary is the catalog an import writes into.
type MediaLibrary interface {
	UpsertShow(sh *library.Show) (bool, error)
	BulkUpsertEpisodes(episodes []*library.Episode) (int, error)
	UpsertMedia(m *library.Media) error
	ReplacePlaylist(title string, entries []*library.Episode) (int, error)
}

// LibraryServer lists a media server's contents.
type LibraryServer interface {
	GetSections(ctx context.Context) ([]Section, error)
	ListSectionItems(ctx context.Context, sec Section) ([]PlexItem, error)
	ListEpisodes(ctx context.Context, showKey string) ([]PlexItem, error)
	GetPlaylists(ctx context.Context) ([]Section, error)
	ListPlaylistItems(ctx context.Context, playlistKey string) ([]PlexItem, error)
}

var _ LibraryServer = (*PlexClient)(nil)

// Publisher receives the sync event.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// SectionConfig maps one server section onto a catalog kind.
type SectionConfig struct {
	Name          string // section or playlist title on the server
	Kind          string // shows, playlist, movies, videos, music or commercials
	CustomSection string // stored as the item's section; defaults to Name. Ignored for playlists.
}

func (sc SectionConfig) section() string {
	if sc.CustomSection != "" {
		return sc.CustomSection
	}
	return sc.Name
}

// Counts is the number of items written per kind.
type Counts struct {
	Shows       int
	Episodes    int
	Movies      int
	Videos      int
	Music       int
	Commercials int
	Playlist    int // playlist entries
}

// Total returns the number of items written.
func (c Counts) Total() int {
	return c.Shows + c.Episodes + c.Movies + c.Videos + c.Music + c.Commercials + c.Playlist
}

func (c *Counts) add(k library.Kind, n int) {
	switch k {
	case library.KindMovie:
		c.Movies += n
	case library.KindVideo:
		c.Videos += n
	case library.KindMusic:
		c.Music += n
	case library.KindCommercial:
		c.Commercials += n
	}
}

// Importer syncs configured sections into the catalog.
type Importer struct {
	server   LibraryServer
	lib      MediaLibrary
	sections []SectionConfig
	bus      Publisher
	log      zerolog.Logger
}

// New creates an importer. bus may be nil.
func New(server LibraryServer, lib MediaLibrary, sections []SectionConfig, bus Publisher, logger zerolog.Logger) *Importer {
	return &Importer{
		server:   server,
		lib:      lib,
		sections: sections,
		bus:      bus,
		log:      logger.With().Str("component", "importer").Logger(),
	}
}

type resolvedSection struct {
	cfg SectionConfig
	sec Section
}

// Sync upserts every item of every configured section, keyed by the
// server's rating key. Existing shows keep their cursor and existing
// episodes keep their playback position.
func (i *Importer) Sync(ctx context.Context) (Counts, error) {
	start := time.Now()
	var counts Counts

	resolved, err := i.resolve(ctx)
	if err != nil {
		return counts, err
	}

	for _, rs := range resolved {
		if err := ctx.Err(); err != nil {
			return counts, err
		}
		if rs.cfg.Kind == KindPlaylist {
			n, err := i.syncPlaylist(ctx, rs.sec)
			counts.Playlist += n
			if err != nil {
				return counts, err
			}
			continue
		}
		items, err := i.server.ListSectionItems(ctx, rs.sec)
		if err != nil {
			return counts, fmt.Errorf("list section %q: %w", rs.cfg.Name, err)
		}

		if rs.cfg.Kind == KindShows {
			shows, episodes, err := i.syncShows(ctx, rs.cfg, items)
			counts.Shows += shows
			counts.Episodes += episodes
			if err != nil {
				return counts, err
			}
			continue
		}

		k := library.Kind(rs.cfg.Kind)
		n, err := i.syncMedia(k, rs.cfg, items)
		counts.add(k, n)
		if err != nil {
			return counts, err
		}
		i.log.Debug().Str("section", rs.cfg.Name).Str("kind", rs.cfg.Kind).Int("items", n).Msg("section synced")
	}

	metrics.RecordImport(KindShows, counts.Shows)
	metrics.RecordImport("episodes", counts.Episodes)
	metrics.RecordImport(string(library.KindMovie), counts.Movies)
	metrics.RecordImport(string(library.KindVideo), counts.Videos)
	metrics.RecordImport(string(library.KindMusic), counts.Music)
	metrics.RecordImport(string(library.KindCommercial), counts.Commercials)
	metrics.RecordImport(KindPlaylist, counts.Playlist)

	i.log.Info().
		Int("shows", counts.Shows).
		Int("episodes", counts.Episodes).
		Int("movies", counts.Movies).
		Int("videos", counts.Videos).
		Int("music", counts.Music).
		Int("commercials", counts.Commercials).
		Int("playlist", counts.Playlist).
		Dur("took", time.Since(start)).
		Msg("library synced")

	if i.bus != nil {
		ev := &events.LibrarySynced{
			BaseEvent:   events.NewBaseEvent(events.EventLibrarySynced, events.EntityLibrary, "plex"),
			Shows:       counts.Shows,
			Episodes:    counts.Episodes,
			Movies:      counts.Movies,
			Videos:      counts.Videos,
			Music:       counts.Music,
			Commercials: counts.Commercials,
			Playlist:    counts.Playlist,
		}
		if err := i.bus.Publish(ctx, ev); err != nil {
			i.log.Error().Err(err).Msg("publish sync event")
		}
	}
	return counts, nil
}

// resolve matches every configured section to a server section before
// anything is written.
func (i *Importer) resolve(ctx context.Context) ([]resolvedSection, error) {
	sections, err := i.server.GetSections(ctx)
	if err != nil {
		return nil, fmt.Errorf("get sections: %w", err)
	}
	var playlists []Section
	for _, cfg := range i.sections {
		if cfg.Kind == KindPlaylist {
			if playlists, err = i.server.GetPlaylists(ctx); err != nil {
				return nil, fmt.Errorf("get playlists: %w", err)
			}
			break
		}
	}

	out := make([]resolvedSection, 0, len(i.sections))
	for _, cfg := range i.sections {
		candidates := sections
		switch {
		case cfg.Kind == KindPlaylist:
			candidates = playlists
		case cfg.Kind != KindShows && !library.Kind(cfg.Kind).Valid():
			return nil, fmt.Errorf("section %q: %w: %q", cfg.Name, ErrUnknownKind, cfg.Kind)
		}
		found := false
		for _, sec := range candidates {
			if strings.EqualFold(sec.Title, cfg.Name) {
				out = append(out, resolvedSection{cfg: cfg, sec: sec})
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, cfg.Name)
		}
	}
	return out, nil
}

func (i *Importer) syncShows(ctx context.Context, cfg SectionConfig, items []PlexItem) (int, int, error) {
	var shows, episodes int
	for _, it := range items {
		if it.Type != "" && it.Type != "show" {
			continue
		}
		sh := &library.Show{
			Title:        it.Title,
			ExternalID:   it.RatingKey,
			Duration:     it.Duration,
			FullImageURL: it.ThumbURL,
			Section:      cfg.section(),
		}
		if _, err := i.lib.UpsertShow(sh); err != nil {
			if errors.Is(err, library.ErrDuplicate) {
				i.log.Warn().Err(err).Str("show", it.Title).Str("rating_key", it.RatingKey).Msg("show skipped")
				continue
			}
			return shows, episodes, fmt.Errorf("upsert show %q: %w", it.Title, err)
		}
		shows++

		leaves, err := i.server.ListEpisodes(ctx, it.RatingKey)
		if err != nil {
			return shows, episodes, fmt.Errorf("list episodes of %q: %w", it.Title, err)
		}
		batch := make([]*library.Episode, 0, len(leaves))
		for _, leaf := range leaves {
			batch = append(batch, &library.Episode{
				Title:         leaf.Title,
				ShowTitle:     sh.Title,
				SeasonNumber:  leaf.Season,
				EpisodeNumber: leaf.Episode,
				Duration:      leaf.Duration,
				ExternalID:    leaf.RatingKey,
				Section:       cfg.section(),
			})
		}
		created, err := i.lib.BulkUpsertEpisodes(batch)
		if err != nil {
			return shows, episodes, fmt.Errorf("upsert episodes of %q: %w", it.Title, err)
		}
		episodes += len(batch)
		i.log.Debug().Str("show", sh.Title).Int("episodes", len(batch)).Int("new", created).Msg("show synced")
	}
	return shows, episodes, nil
}

// syncPlaylist stores the playlist as a show tagged SectionPlaylist and
// replaces its entries. Repeated entries are kept.
func (i *Importer) syncPlaylist(ctx context.Context, pl Section) (int, error) {
	items, err := i.server.ListPlaylistItems(ctx, pl.Key)
	if err != nil {
		return 0, fmt.Errorf("list playlist %q: %w", pl.Title, err)
	}

	sh := &library.Show{
		Title:      pl.Title,
		ExternalID: pl.Key,
		Section:    library.SectionPlaylist,
	}
	if _, err := i.lib.UpsertShow(sh); err != nil {
		if errors.Is(err, library.ErrDuplicate) {
			i.log.Warn().Err(err).Str("playlist", pl.Title).Msg("playlist skipped")
			return 0, nil
		}
		return 0, fmt.Errorf("upsert playlist %q: %w", pl.Title, err)
	}

	entries := make([]*library.Episode, 0, len(items))
	for n, it := range items {
		entries = append(entries, &library.Episode{
			Title:         it.Title,
			SeasonNumber:  1,
			EpisodeNumber: n + 1,
			Duration:      it.Duration,
			ExternalID:    it.RatingKey,
		})
	}
	added, err := i.lib.ReplacePlaylist(sh.Title, entries)
	if err != nil {
		return 0, fmt.Errorf("store playlist %q: %w", pl.Title, err)
	}
	i.log.Debug().Str("playlist", sh.Title).Int("entries", added).Msg("playlist synced")
	return added, nil
}

func (i *Importer) syncMedia(k library.Kind, cfg SectionConfig, items []PlexItem) (int, error) {
	n := 0
	for _, it := range items {
		m := &library.Media{
			Kind:       k,
			Title:      it.Title,
			Duration:   it.Duration,
			ExternalID: it.RatingKey,
			Section:    cfg.section(),
		}
		if err := i.lib.UpsertMedia(m); err != nil {
			return n, fmt.Errorf("upsert %s %q: %w", k, it.Title, err)
		}
		n++
	}
	return n, nil
}
