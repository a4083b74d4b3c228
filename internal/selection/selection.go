// Package selection picks random catalog items whose duration fits a slot.
package selection

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vmunix/pseudotv/internal/library"
	"github.com/vmunix/pseudotv/internal/metrics"
)

// ErrInvalidRange is returned when the minimum duration exceeds the maximum.
var ErrInvalidRange = errors.New("invalid duration range")

// Category names a pickable catalog table.
type Category string

const (
	CategoryEpisodes    Category = "episodes"
	CategoryShows       Category = "shows"
	CategoryMovies      Category = Category(library.KindMovie)
	CategoryVideos      Category = Category(library.KindVideo)
	CategoryMusic       Category = Category(library.KindMusic)
	CategoryCommercials Category = Category(library.KindCommercial)
)

// Categories lists every category in a stable order.
var Categories = []Category{
	CategoryEpisodes, CategoryShows, CategoryMovies,
	CategoryVideos, CategoryMusic, CategoryCommercials,
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// MediaItem is a picked row. ShowTitle is set for episodes only.
type MediaItem struct {
	Category   Category
	ID         int64
	ExternalID string
	Title      string
	ShowTitle  string
	Duration   time.Duration
	Section    string
}

// Source is the library surface selection reads from.
type Source interface {
	CountCandidates(cq library.CandidateQuery) (int, error)
	CandidateAt(cq library.CandidateQuery, offset int) (*library.Candidate, error)
}

// Service draws uniformly at random among rows within a duration range.
type Service struct {
	src Source

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Service. A nil rng uses a randomly seeded source.
func New(src Source, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Service{src: src, rng: rng}
}

func (s *Service) intN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// toMillis converts bounds to whole milliseconds without widening them.
func toMillis(minDur, maxDur time.Duration) (int64, int64) {
	lo := minDur.Milliseconds()
	if time.Duration(lo)*time.Millisecond < minDur {
		lo++
	}
	return lo, maxDur.Milliseconds()
}

func (s *Service) pick(c Category, showTitle *string, minDur, maxDur time.Duration) (*MediaItem, error) {
	if minDur > maxDur {
		return nil, fmt.Errorf("pick %s between %s and %s: %w", c, minDur, maxDur, ErrInvalidRange)
	}
	lo, hi := toMillis(minDur, maxDur)
	cq := library.CandidateQuery{Table: string(c), ShowTitle: showTitle, MinDuration: lo, MaxDuration: hi}
	// Playlist rows advance with their show but never fill open slots.
	if showTitle == nil && (c == CategoryEpisodes || c == CategoryShows) {
		cq.ExcludeSection = library.SectionPlaylist
	}

	n, err := s.src.CountCandidates(cq)
	if err != nil {
		return nil, fmt.Errorf("pick %s: %w", c, err)
	}
	if n == 0 {
		metrics.RecordSelection(string(c), false)
		return nil, fmt.Errorf("pick %s between %s and %s: %w", c, minDur, maxDur, library.ErrNotFound)
	}
	row, err := s.src.CandidateAt(cq, s.intN(n))
	if err != nil {
		return nil, fmt.Errorf("pick %s: %w", c, err)
	}
	metrics.RecordSelection(string(c), true)
	return &MediaItem{
		Category:   c,
		ID:         row.ID,
		ExternalID: row.ExternalID,
		Title:      row.Title,
		ShowTitle:  row.ShowTitle,
		Duration:   time.Duration(row.Duration) * time.Millisecond,
		Section:    row.Section,
	}, nil
}

// PickRandom returns a uniformly random item of category c whose duration
// lies in [minDur, maxDur]. Returns library.ErrNotFound when nothing fits;
// bounds are never widened.
func (s *Service) PickRandom(c Category, minDur, maxDur time.Duration) (*MediaItem, error) {
	return s.pick(c, nil, minDur, maxDur)
}

// PickRandomEpisodeOfShow picks among one show's episodes, playlist rows
// included.
func (s *Service) PickRandomEpisodeOfShow(showTitle string, minDur, maxDur time.Duration) (*MediaItem, error) {
	return s.pick(CategoryEpisodes, &showTitle, minDur, maxDur)
}

// PickRandomEpisode picks among all non-playlist episodes.
func (s *Service) PickRandomEpisode(minDur, maxDur time.Duration) (*MediaItem, error) {
	return s.pick(CategoryEpisodes, nil, minDur, maxDur)
}

// PickRandomMovie picks among all movies.
func (s *Service) PickRandomMovie(minDur, maxDur time.Duration) (*MediaItem, error) {
	return s.pick(CategoryMovies, nil, minDur, maxDur)
}

// PickRandomShow picks among all non-playlist shows.
func (s *Service) PickRandomShow(minDur, maxDur time.Duration) (*MediaItem, error) {
	return s.pick(CategoryShows, nil, minDur, maxDur)
}

// PickRandomCommercial picks among all commercials.
func (s *Service) PickRandomCommercial(minDur, maxDur time.Duration) (*MediaItem, error) {
	return s.pick(CategoryCommercials, nil, minDur, maxDur)
}
