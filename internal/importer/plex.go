package importer

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// PlexClient reads library contents from a Plex Media Server.
type PlexClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewPlexClient creates a new Plex client.
func NewPlexClient(baseURL, token string, logger zerolog.Logger) *PlexClient {
	return &PlexClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		log:     logger.With().Str("component", "plex").Logger(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Section represents a Plex library section.
type Section struct {
	Key   string `xml:"key,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type sectionsResponse struct {
	XMLName  xml.Name  `xml:"MediaContainer"`
	Sections []Section `xml:"Directory"`
}

// PlexItem is a show, episode, movie, clip or track.
type PlexItem struct {
	RatingKey string
	Title     string
	Type      string
	Duration  int64 // milliseconds
	Season    int
	Episode   int
	ShowTitle string
	LeafCount int
	AddedAt   int64
	ThumbURL  string
}

type plexItemXML struct {
	RatingKey        string `xml:"ratingKey,attr"`
	Title            string `xml:"title,attr"`
	Type             string `xml:"type,attr"`
	Duration         int64  `xml:"duration,attr"`
	Index            int    `xml:"index,attr"`
	ParentIndex      int    `xml:"parentIndex,attr"`
	GrandparentTitle string `xml:"grandparentTitle,attr"`
	LeafCount        int    `xml:"leafCount,attr"`
	AddedAt          int64  `xml:"addedAt,attr"`
	Thumb            string `xml:"thumb,attr"`
}

// itemsResponse covers /library/sections/{key}/all,
// /library/metadata/{key}/allLeaves and /playlists/{key}/items.
type itemsResponse struct {
	XMLName     xml.Name      `xml:"MediaContainer"`
	Videos      []plexItemXML `xml:"Video"`     // movies, episodes, clips
	Directories []plexItemXML `xml:"Directory"` // shows
	Tracks      []plexItemXML `xml:"Track"`     // music
}

func (r itemsResponse) items() []plexItemXML {
	all := make([]plexItemXML, 0, len(r.Videos)+len(r.Directories)+len(r.Tracks))
	all = append(all, r.Videos...)
	all = append(all, r.Directories...)
	return append(all, r.Tracks...)
}

func (c *PlexClient) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status: %d", path, resp.StatusCode)
	}
	if err := xml.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	c.log.Debug().Str("path", path).Int64("duration_ms", time.Since(start).Milliseconds()).Msg("plex request")
	return nil
}

// GetSections returns all library sections.
func (c *PlexClient) GetSections(ctx context.Context) ([]Section, error) {
	var result sectionsResponse
	if err := c.get(ctx, "/library/sections", nil, &result); err != nil {
		return nil, err
	}
	return result.Sections, nil
}

// FindSectionByName finds a library section by name (case-insensitive).
// Returns nil if not found.
func (c *PlexClient) FindSectionByName(ctx context.Context, name string) (*Section, error) {
	sections, err := c.GetSections(ctx)
	if err != nil {
		return nil, err
	}
	for _, sec := range sections {
		if strings.EqualFold(sec.Title, name) {
			return &sec, nil
		}
	}
	return nil, nil
}

// ListSectionItems returns the top-level items of a section: shows for a
// show section, movies or clips otherwise. Music sections list tracks.
func (c *PlexClient) ListSectionItems(ctx context.Context, sec Section) ([]PlexItem, error) {
	var q url.Values
	if sec.Type == "artist" {
		// type=10 flattens artists and albums into tracks.
		q = url.Values{"type": {"10"}}
	}
	var result itemsResponse
	if err := c.get(ctx, "/library/sections/"+url.PathEscape(sec.Key)+"/all", q, &result); err != nil {
		return nil, err
	}
	return toItems(result.items()), nil
}

// ListEpisodes returns every episode of a show in season and episode order.
func (c *PlexClient) ListEpisodes(ctx context.Context, showKey string) ([]PlexItem, error) {
	var result itemsResponse
	if err := c.get(ctx, "/library/metadata/"+url.PathEscape(showKey)+"/allLeaves", nil, &result); err != nil {
		return nil, err
	}
	return toItems(result.items()), nil
}

type playlistsResponse struct {
	XMLName   xml.Name `xml:"MediaContainer"`
	Playlists []struct {
		RatingKey    string `xml:"ratingKey,attr"`
		Title        string `xml:"title,attr"`
		PlaylistType string `xml:"playlistType,attr"`
	} `xml:"Playlist"`
}

// GetPlaylists returns the server's playlists as sections keyed by rating
// key, with Type set to the playlist type (video, audio or photo).
func (c *PlexClient) GetPlaylists(ctx context.Context) ([]Section, error) {
	var result playlistsResponse
	if err := c.get(ctx, "/playlists", nil, &result); err != nil {
		return nil, err
	}
	out := make([]Section, len(result.Playlists))
	for i, pl := range result.Playlists {
		out[i] = Section{Key: pl.RatingKey, Title: pl.Title, Type: pl.PlaylistType}
	}
	return out, nil
}

// ListPlaylistItems returns a playlist's entries in playlist order.
func (c *PlexClient) ListPlaylistItems(ctx context.Context, playlistKey string) ([]PlexItem, error) {
	var result itemsResponse
	if err := c.get(ctx, "/playlists/"+url.PathEscape(playlistKey)+"/items", nil, &result); err != nil {
		return nil, err
	}
	return toItems(result.items()), nil
}

func toItems(raw []plexItemXML) []PlexItem {
	items := make([]PlexItem, len(raw))
	for i, it := range raw {
		items[i] = PlexItem{
			RatingKey: it.RatingKey,
			Title:     it.Title,
			Type:      it.Type,
			Duration:  it.Duration,
			Season:    it.ParentIndex,
			Episode:   it.Index,
			ShowTitle: it.GrandparentTitle,
			LeafCount: it.LeafCount,
			AddedAt:   it.AddedAt,
			ThumbURL:  it.Thumb,
		}
	}
	return items
}
