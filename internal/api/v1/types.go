package v1

import (
	"time"

	"github.com/vmunix/pseudotv/internal/library"
	"github.com/vmunix/pseudotv/internal/schedule"
	"github.com/vmunix/pseudotv/internal/selection"
)

// entryResponse is the API representation of a daily schedule entry.
type entryResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	ShowTitle     string `json:"show_title,omitempty"`
	SeasonNumber  int    `json:"season_number,omitempty"`
	EpisodeNumber int    `json:"episode_number,omitempty"`
	Section       string `json:"section"`
	Start         string `json:"start"`
	End           string `json:"end"`
	DayOfWeek     string `json:"day_of_week"`
	DurationMs    int64  `json:"duration_ms"`
	ExternalID    string `json:"external_id,omitempty"`
}

func toEntry(p schedule.Placement) entryResponse {
	m := p.Item.Common()
	e := entryResponse{
		ID:         p.ID,
		Title:      m.Title,
		Section:    p.Item.SectionType(),
		Start:      p.Start.String(),
		End:        p.End.String(),
		DayOfWeek:  p.DayOfWeek,
		DurationMs: m.Duration.Milliseconds(),
		ExternalID: m.ExternalID,
	}
	if ep, ok := p.Item.(schedule.EpisodeItem); ok {
		e.ShowTitle = ep.ShowTitle
		e.SeasonNumber = ep.SeasonNumber
		e.EpisodeNumber = ep.EpisodeNumber
	}
	return e
}

// nowPlayingResponse is the response for GET /now-playing.
type nowPlayingResponse struct {
	entryResponse
	RemainingMs int64 `json:"remaining_ms"`
}

type listEntriesResponse struct {
	Items []entryResponse `json:"items"`
	Total int             `json:"total"`
}

// weeklyResponse is the API representation of a weekly template slot.
type weeklyResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Start      string `json:"start"`
	End        string `json:"end"`
	DayOfWeek  string `json:"day_of_week"`
	Section    string `json:"section"`
	StrictTime bool   `json:"strict_time"`
	TimeShift  string `json:"time_shift,omitempty"`
	OverlapMax string `json:"overlap_max,omitempty"`
}

type listWeeklyResponse struct {
	Items []weeklyResponse `json:"items"`
	Total int              `json:"total"`
}

func toWeekly(w schedule.WeeklyEntry) weeklyResponse {
	return weeklyResponse{
		ID:         w.ID,
		Title:      w.Title,
		Start:      w.Start.String(),
		End:        w.End.String(),
		DayOfWeek:  w.DayOfWeek,
		Section:    w.Section,
		StrictTime: w.StrictTime,
		TimeShift:  w.TimeShift,
		OverlapMax: w.OverlapMax,
	}
}

// episodeResponse is the API representation of an episode.
type episodeResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	ShowTitle     string `json:"show_title"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	DurationMs    int64  `json:"duration_ms"`
	ExternalID    string `json:"external_id,omitempty"`
	Section       string `json:"section,omitempty"`
}

func toEpisode(e *library.Episode) episodeResponse {
	return episodeResponse{
		ID:            e.ID,
		Title:         e.Title,
		ShowTitle:     e.ShowTitle,
		SeasonNumber:  e.SeasonNumber,
		EpisodeNumber: e.EpisodeNumber,
		DurationMs:    e.Duration,
		ExternalID:    e.ExternalID,
		Section:       e.Section,
	}
}

// mediaResponse is the API representation of a random pick.
type mediaResponse struct {
	Category   string `json:"category"`
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	ShowTitle  string `json:"show_title,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	ExternalID string `json:"external_id,omitempty"`
	Section    string `json:"section,omitempty"`
}

func toMedia(m *selection.MediaItem) mediaResponse {
	return mediaResponse{
		Category:   string(m.Category),
		ID:         m.ID,
		Title:      m.Title,
		ShowTitle:  m.ShowTitle,
		DurationMs: m.Duration.Milliseconds(),
		ExternalID: m.ExternalID,
		Section:    m.Section,
	}
}

// rebuildResponse is the response for POST /schedule/rebuild.
type rebuildResponse struct {
	Day     string `json:"day"`
	Entries int    `json:"entries"`
	Skipped int    `json:"skipped"`
	Fillers int    `json:"fillers"`
}

// EventResponse is the API representation of a logged event.
type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityKey  string `json:"entity_key"`
	Payload    string `json:"payload"`
	OccurredAt string `json:"occurred_at"`
}

type listEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

func formatTime(t time.Time) string { return t.Format(time.RFC3339) }
