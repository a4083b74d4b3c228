package events

// Event types.
const (
	EventEpisodeAdvanced = "episode.advanced"
	EventSeriesWrapped   = "series.wrapped"
	EventCursorRecovered = "cursor.recovered"
	EventScheduleRebuilt = "schedule.rebuilt"
	EventLibrarySynced   = "library.synced"
)

// Entity types.
const (
	EntityShow     = "show"
	EntitySchedule = "schedule"
	EntityLibrary  = "library"
)

// EpisodeAdvanced is emitted when a show's cursor moves to a new episode.
type EpisodeAdvanced struct {
	BaseEvent
	ShowTitle     string `json:"show_title"`
	EpisodeID     int64  `json:"episode_id"`
	EpisodeTitle  string `json:"episode_title"`
	SeasonNumber  int    `json:"season"`
	EpisodeNumber int    `json:"episode"`
	Cursor        string `json:"cursor"`
}

// SeriesWrapped is emitted when a show ran past its last episode and
// restarted from the first.
type SeriesWrapped struct {
	BaseEvent
	ShowTitle string `json:"show_title"`
	LastID    int64  `json:"last_episode_id"`
}

// CursorRecovered is emitted when a stored cursor matched no episode and
// was reset to the first episode.
type CursorRecovered struct {
	BaseEvent
	ShowTitle string `json:"show_title"`
	Cursor    string `json:"cursor"`
}

// ScheduleRebuilt is emitted after the daily schedule is replaced.
type ScheduleRebuilt struct {
	BaseEvent
	Day      string `json:"day"` // YYYY-MM-DD
	Entries  int    `json:"entries"`
	Skipped  int    `json:"skipped"`
	Fillers  int    `json:"fillers"`
	Duration int64  `json:"duration_ms"`
}

// LibrarySynced is emitted when an import finishes.
type LibrarySynced struct {
	BaseEvent
	Shows       int `json:"shows"`
	Episodes    int `json:"episodes"`
	Movies      int `json:"movies"`
	Videos      int `json:"videos"`
	Music       int `json:"music"`
	Commercials int `json:"commercials"`
	Playlist    int `json:"playlist"`
}
