// Package library manages the channel catalog (shows, episodes, movies, videos, music, commercials).
package library

import (
	"time"
)

// SectionPlaylist marks rows imported from a playlist rather than a library
// section. Playlist episodes advance with their show but are excluded from
// open random fill.
const SectionPlaylist = "playlist"

// Show is a series the channel can progress through.
// Cursor holds the pointer to the last episode handed out; empty means the
// show has never been scheduled.
type Show struct {
	ID           int64  `db:"id"`
	Unix         int64  `db:"unix"`
	Title        string `db:"title"`
	Duration     int64  `db:"duration"` // milliseconds
	Cursor       string `db:"lastEpisodeTitle"`
	FullImageURL string `db:"fullImageURL"`
	ExternalID   string `db:"plexMediaID"`
	Section      string `db:"customSectionName"`
}

// Episode is a single episode of a show. ID follows insertion order and is
// the canonical playback order within a show.
type Episode struct {
	ID            int64  `db:"id"`
	Unix          int64  `db:"unix"`
	Title         string `db:"title"`
	Duration      int64  `db:"duration"` // milliseconds
	EpisodeNumber int    `db:"episodeNumber"`
	SeasonNumber  int    `db:"seasonNumber"`
	ShowTitle     string `db:"showTitle"`
	ExternalID    string `db:"plexMediaID"`
	Section       string `db:"customSectionName"`
}

// Length returns the episode duration.
func (e *Episode) Length() time.Duration {
	return time.Duration(e.Duration) * time.Millisecond
}

// Kind names a flat catalog table.
type Kind string

const (
	KindMovie      Kind = "movies"
	KindVideo      Kind = "videos"
	KindMusic      Kind = "music"
	KindCommercial Kind = "commercials"
)

// Kinds lists every flat catalog kind.
var Kinds = []Kind{KindMovie, KindVideo, KindMusic, KindCommercial}

// Valid reports whether k is a known catalog kind.
func (k Kind) Valid() bool {
	switch k {
	case KindMovie, KindVideo, KindMusic, KindCommercial:
		return true
	}
	return false
}

// Media is a movie, video, music track or commercial.
// LastPlayedDate is only tracked for movies.
type Media struct {
	ID             int64  `db:"id"`
	Kind           Kind   `db:"-"`
	Unix           int64  `db:"unix"`
	Title          string `db:"title"`
	Duration       int64  `db:"duration"` // milliseconds
	LastPlayedDate string `db:"lastPlayedDate"`
	ExternalID     string `db:"plexMediaID"`
	Section        string `db:"customSectionName"`
}

// Length returns the media duration.
func (m *Media) Length() time.Duration {
	return time.Duration(m.Duration) * time.Millisecond
}
