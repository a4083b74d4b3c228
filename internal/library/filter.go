package library

// ShowFilter specifies criteria for listing shows.
type ShowFilter struct {
	Section *string
	Limit   int // 0 = no limit
	Offset  int
}

// EpisodeFilter specifies criteria for listing episodes.
type EpisodeFilter struct {
	ShowTitle *string // case-insensitive exact match
	Season    *int
	Section   *string
	Limit     int
	Offset    int
}

// MediaFilter specifies criteria for listing catalog media of one kind.
type MediaFilter struct {
	Section *string
	Limit   int
	Offset  int
}
