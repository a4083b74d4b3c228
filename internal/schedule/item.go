package schedule

import (
	"time"
)

// Section types stored with each materialized entry.
const (
	SectionTV          = "TV Shows"
	SectionMovies      = "Movies"
	SectionCommercials = "Commercials"
	SectionVideos      = "Videos"
	SectionMusic       = "Music"
)

// Media holds the fields every schedulable item carries.
type Media struct {
	Title      string
	Duration   time.Duration
	ExternalID string
	Section    string // library section the item came from
}

// ScheduleItem is one of EpisodeItem, MovieItem, CommercialItem, VideoItem
// or MusicItem.
type ScheduleItem interface {
	Common() Media
	SectionType() string
	sealed()
}

// EpisodeItem is an episode of a show.
type EpisodeItem struct {
	Media
	ShowTitle     string
	SeasonNumber  int
	EpisodeNumber int
}

// MovieItem is a movie.
type MovieItem struct{ Media }

// CommercialItem is a commercial break filler.
type CommercialItem struct{ Media }

// VideoItem is a standalone video.
type VideoItem struct{ Media }

// MusicItem is a music track.
type MusicItem struct{ Media }

func (i EpisodeItem) Common() Media    { return i.Media }
func (i MovieItem) Common() Media      { return i.Media }
func (i CommercialItem) Common() Media { return i.Media }
func (i VideoItem) Common() Media      { return i.Media }
func (i MusicItem) Common() Media      { return i.Media }

func (EpisodeItem) SectionType() string    { return SectionTV }
func (MovieItem) SectionType() string      { return SectionMovies }
func (CommercialItem) SectionType() string { return SectionCommercials }
func (VideoItem) SectionType() string      { return SectionVideos }
func (MusicItem) SectionType() string      { return SectionMusic }

func (EpisodeItem) sealed()    {}
func (MovieItem) sealed()      {}
func (CommercialItem) sealed() {}
func (VideoItem) sealed()      {}
func (MusicItem) sealed()      {}

// Placement is an item placed at a concrete time of day.
type Placement struct {
	ID        int64
	Item      ScheduleItem
	Start     Clock
	End       Clock
	DayOfWeek string
}

// Place puts item at start; the end follows from the item's duration.
func Place(item ScheduleItem, start Clock, weekday time.Weekday) Placement {
	return Placement{
		Item:      item,
		Start:     start,
		End:       start.Add(item.Common().Duration),
		DayOfWeek: weekday.String(),
	}
}

// Window returns the placement's [Start, End) window.
func (p Placement) Window() Window { return Window{Start: p.Start, End: p.End} }

// Title returns the display title: "Show - Episode" for episodes.
func (p Placement) Title() string {
	if ep, ok := p.Item.(EpisodeItem); ok && ep.ShowTitle != "" {
		return ep.ShowTitle + " - " + ep.Title
	}
	return p.Item.Common().Title
}
