package v1

import (
	"context"
	"errors"
	"time"

	"github.com/vmunix/pseudotv/internal/events"
	"github.com/vmunix/pseudotv/internal/guide"
	"github.com/vmunix/pseudotv/internal/library"
	"github.com/vmunix/pseudotv/internal/planner"
	"github.com/vmunix/pseudotv/internal/schedule"
	"github.com/vmunix/pseudotv/internal/selection"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// Timeline reads the materialized and weekly schedules.
type Timeline interface {
	NowPlaying(at time.Time) (*schedule.Placement, error)
	UpNext(at time.Time, n int) ([]schedule.Placement, error)
	ListDailySchedule() ([]schedule.Placement, error)
	ListWeeklySchedule() ([]schedule.WeeklyEntry, error)
	ListWeeklyScheduleFrom(hour int) ([]schedule.WeeklyEntry, error)
}

// Episodes advances and previews show cursors.
type Episodes interface {
	NextEpisode(ctx context.Context, showTitle string) (*library.Episode, error)
	Peek(showTitle string) (*library.Episode, error)
}

// Picker draws random media.
type Picker interface {
	PickRandom(c selection.Category, minDur, maxDur time.Duration) (*selection.MediaItem, error)
}

// Rebuilder regenerates the daily schedule.
type Rebuilder interface {
	Rebuild(ctx context.Context, day time.Time) (planner.Summary, error)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Timeline Timeline
	Episodes Episodes

	// Optional dependencies (nil if not configured)
	Picker    Picker
	Rebuilder Rebuilder
	EventLog  *events.EventLog

	Channel guide.ChannelInfo
	Now     func() time.Time // defaults to time.Now
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Timeline == nil {
		return errors.New("timeline is required")
	}
	if d.Episodes == nil {
		return errors.New("episodes is required")
	}
	return nil
}
