// Package planner rebuilds the day's timeline from the weekly template.
package planner

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
	"github.com/vmunix/pseudotv/internal/schedule"
	"github.com/vmunix/pseudotv/internal/selection"
)

// Episodes hands out the next episode of a show. Cursor and RestoreCursor
// let a failed rebuild put cursors back where it found them.
type Episodes interface {
	NextEpisode(ctx context.Context, showTitle string) (*library.Episode, error)
	Cursor(showTitle string) (string, error)
	RestoreCursor(showTitle, cursor string) error
}

// Picker draws random items by duration.
type Picker interface {
	PickRandom(c selection.Category, minDur, maxDur time.Duration) (*selection.MediaItem, error)
	PickRandomCommercial(minDur, maxDur time.Duration) (*selection.MediaItem, error)
}

// Catalog resolves titled movie slots.
type Catalog interface {
	FindMedia(k library.Kind, title string) ([]*library.Media, error)
	MarkMoviePlayed(title string, on time.Time) error
}

// Timeline is the schedule storage the planner reads and replaces.
type Timeline interface {
	ListWeeklyScheduleForDay(weekday time.Weekday) ([]schedule.WeeklyEntry, error)
	ReplaceDailySchedule(ps []schedule.Placement) error
}

// Publisher receives the rebuild event.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Options tune commercial gap filling.
type Options struct {
	CommercialFill bool
	CommercialMin  time.Duration
	CommercialMax  time.Duration
}

// Summary describes one rebuild.
type Summary struct {
	Day     time.Time
	Entries int // placements written, fillers included
	Skipped int // template slots with nothing to play
	Fillers int
}

// Planner places one item per template slot and persists the result.
type Planner struct {
	timeline Timeline
	episodes Episodes
	picker   Picker
	catalog  Catalog
	bus      Publisher
	opts     Options
	log      zerolog.Logger
}

// New creates a Planner. bus may be nil.
func New(timeline Timeline, episodes Episodes, picker Picker, catalog Catalog, bus Publisher, opts Options, logger zerolog.Logger) *Planner {
	return &Planner{
		timeline: timeline,
		episodes: episodes,
		picker:   picker,
		catalog:  catalog,
		bus:      bus,
		opts:     opts,
		log:      logger.With().Str("component", "planner").Logger(),
	}
}

// Rebuild replaces the daily schedule with a fresh plan for day's weekday.
// A slot with nothing to play is skipped. Any other failure aborts the
// rebuild, leaves the previous schedule in place and puts back every show
// cursor the rebuild moved. Movies are marked played only once the new
// schedule is stored.
func (p *Planner) Rebuild(ctx context.Context, day time.Time) (Summary, error) {
	started := time.Now()
	sum, err := p.rebuild(ctx, day)
	metrics.RecordRebuild(sum.Entries, err)
	if err != nil {
		p.log.Error().Err(err).Str("day", day.Format(time.DateOnly)).Msg("schedule rebuild failed")
		return sum, err
	}

	p.log.Info().
		Str("day", day.Format(time.DateOnly)).
		Int("entries", sum.Entries).
		Int("skipped", sum.Skipped).
		Int("fillers", sum.Fillers).
		Dur("took", time.Since(started)).
		Msg("schedule rebuilt")

	if p.bus != nil {
		ev := &events.ScheduleRebuilt{
			BaseEvent: events.NewBaseEvent(events.EventScheduleRebuilt, events.EntitySchedule, day.Format(time.DateOnly)),
			Day:       day.Format(time.DateOnly),
			Entries:   sum.Entries,
			Skipped:   sum.Skipped,
			Fillers:   sum.Fillers,
			Duration:  time.Since(started).Milliseconds(),
		}
		if err := p.bus.Publish(ctx, ev); err != nil {
			p.log.Error().Err(err).Msg("publish rebuild event")
		}
	}
	return sum, nil
}

// pass tracks the side effects of one rebuild.
type pass struct {
	cursors map[string]string // lowercased show title -> cursor before the rebuild
	titles  map[string]string // lowercased show title -> title as scheduled
	played  []string          // movie titles to mark once stored
}

func (ps *pass) remember(showTitle string, current func(string) (string, error)) error {
	key := strings.ToLower(showTitle)
	if _, ok := ps.cursors[key]; ok {
		return nil
	}
	cursor, err := current(showTitle)
	if err != nil {
		return err
	}
	ps.cursors[key] = cursor
	ps.titles[key] = showTitle
	return nil
}

// restore puts back the cursors of every show this pass advanced.
func (p *Planner) restore(ps *pass) {
	for key, cursor := range ps.cursors {
		if err := p.episodes.RestoreCursor(ps.titles[key], cursor); err != nil && !errors.Is(err, library.ErrNotFound) {
			p.log.Error().Err(err).Str("show", ps.titles[key]).Msg("restore cursor after failed rebuild")
		}
	}
}

func (p *Planner) rebuild(ctx context.Context, day time.Time) (sum Summary, err error) {
	sum = Summary{Day: day}
	ps := &pass{cursors: make(map[string]string), titles: make(map[string]string)}
	defer func() {
		if err != nil {
			p.restore(ps)
		}
	}()

	slots, err := p.timeline.ListWeeklyScheduleForDay(day.Weekday())
	if err != nil {
		return sum, fmt.Errorf("load template: %w", err)
	}

	var (
		out     []schedule.Placement
		prevEnd time.Time
	)
	for i, slot := range slots {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		slotStart := slot.Start.On(day).Add(slot.Shift())
		start := slotStart
		switch {
		case prevEnd.IsZero():
		case slot.StrictTime && prevEnd.After(slotStart):
			// Cut the previous item short.
			out[len(out)-1].End = schedule.ClockOf(slotStart)
		case prevEnd.After(slotStart):
			start = prevEnd
		}

		// A slot without an end is open until the next day.
		budget := 24 * time.Hour
		if slot.End != slot.Start {
			budget = slot.End.On(day).Sub(start)
			if slot.End < slot.Start {
				budget += 24 * time.Hour
			}
		}
		budget = max(budget+slot.Overlap(), 0)

		item, err := p.choose(ctx, ps, slot, budget)
		if errors.Is(err, library.ErrNotFound) {
			sum.Skipped++
			p.log.Warn().Err(err).Str("slot", slot.Start.String()).Str("title", slot.Title).Msg("nothing to play, skipping slot")
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("slot %s %q: %w", slot.Start, slot.Title, err)
		}

		placed := schedule.Place(item, schedule.ClockOf(start), start.Weekday())
		out = append(out, placed)
		prevEnd = start.Add(item.Common().Duration)

		if p.opts.CommercialFill && i+1 < len(slots) {
			next := slots[i+1].Start.On(day).Add(slots[i+1].Shift())
			fillers, end, err := p.fill(prevEnd, next)
			if err != nil {
				return sum, err
			}
			out = append(out, fillers...)
			sum.Fillers += len(fillers)
			prevEnd = end
		}
	}

	if err := p.timeline.ReplaceDailySchedule(out); err != nil {
		return sum, fmt.Errorf("replace daily schedule: %w", err)
	}
	sum.Entries = len(out)

	for _, title := range ps.played {
		if err := p.catalog.MarkMoviePlayed(title, day); err != nil && !errors.Is(err, library.ErrNotFound) {
			p.log.Warn().Err(err).Str("movie", title).Msg("mark movie played")
		}
	}
	return sum, nil
}

func (p *Planner) choose(ctx context.Context, ps *pass, slot schedule.WeeklyEntry, budget time.Duration) (schedule.ScheduleItem, error) {
	switch slot.Section {
	case schedule.SectionTV:
		if err := ps.remember(slot.Title, p.episodes.Cursor); err != nil {
			return nil, err
		}
		ep, err := p.episodes.NextEpisode(ctx, slot.Title)
		if err != nil {
			return nil, err
		}
		return schedule.EpisodeItem{
			Media:         media(ep.Title, ep.Length(), ep.ExternalID, ep.Section),
			ShowTitle:     ep.ShowTitle,
			SeasonNumber:  ep.SeasonNumber,
			EpisodeNumber: ep.EpisodeNumber,
		}, nil

	case schedule.SectionMovies:
		m, err := p.movie(slot.Title, budget)
		if err != nil {
			return nil, err
		}
		ps.played = append(ps.played, m.Title)
		return schedule.MovieItem{Media: m}, nil

	case schedule.SectionCommercials, schedule.SectionVideos, schedule.SectionMusic:
		c := map[string]selection.Category{
			schedule.SectionCommercials: selection.CategoryCommercials,
			schedule.SectionVideos:      selection.CategoryVideos,
			schedule.SectionMusic:       selection.CategoryMusic,
		}[slot.Section]
		it, err := p.picker.PickRandom(c, 0, budget)
		if err != nil {
			return nil, err
		}
		m := media(it.Title, it.Duration, it.ExternalID, it.Section)
		switch c {
		case selection.CategoryCommercials:
			return schedule.CommercialItem{Media: m}, nil
		case selection.CategoryVideos:
			return schedule.VideoItem{Media: m}, nil
		}
		return schedule.MusicItem{Media: m}, nil
	}
	return nil, fmt.Errorf("unknown section %q: %w", slot.Section, library.ErrNotFound)
}

// movie resolves a titled movie slot, falling back to a random movie that
// fits the budget when the title is empty or unknown.
func (p *Planner) movie(title string, budget time.Duration) (schedule.Media, error) {
	if title != "" {
		found, err := p.catalog.FindMedia(library.KindMovie, title)
		if err != nil {
			return schedule.Media{}, err
		}
		for _, m := range found {
			if strings.EqualFold(m.Title, title) {
				return media(m.Title, m.Length(), m.ExternalID, m.Section), nil
			}
		}
		if len(found) > 0 {
			m := found[0]
			return media(m.Title, m.Length(), m.ExternalID, m.Section), nil
		}
	}
	it, err := p.picker.PickRandom(selection.CategoryMovies, 0, budget)
	if err != nil {
		return schedule.Media{}, err
	}
	return media(it.Title, it.Duration, it.ExternalID, it.Section), nil
}

// fill places commercials from `from` until no commercial fits before next.
func (p *Planner) fill(from, next time.Time) ([]schedule.Placement, time.Time, error) {
	var out []schedule.Placement
	for {
		gap := next.Sub(from)
		if gap <= 0 || gap < p.opts.CommercialMin {
			return out, from, nil
		}
		it, err := p.picker.PickRandomCommercial(p.opts.CommercialMin, min(p.opts.CommercialMax, gap))
		if errors.Is(err, library.ErrNotFound) {
			return out, from, nil
		}
		if err != nil {
			return nil, from, fmt.Errorf("fill gap at %s: %w", schedule.ClockOf(from), err)
		}
		if it.Duration <= 0 {
			return out, from, nil
		}
		item := schedule.CommercialItem{Media: media(it.Title, it.Duration, it.ExternalID, it.Section)}
		out = append(out, schedule.Place(item, schedule.ClockOf(from), from.Weekday()))
		from = from.Add(it.Duration)
	}
}

func media(title string, d time.Duration, externalID, section string) schedule.Media {
	return schedule.Media{Title: title, Duration: d, ExternalID: externalID, Section: section}
}
