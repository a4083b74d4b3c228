// Package progression hands out the next episode of a show, keeping a
// persistent per-show cursor that survives restarts.
package progression

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vmunix/pseudotv/internal/events"
	"github.com/vmunix/pseudotv/internal/library"
	"github.com/vmunix/pseudotv/internal/metrics"
)

// Publisher receives progression events.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Engine advances show cursors.
type Engine struct {
	store  *library.Store
	bus    Publisher
	format CursorFormat
	log    zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithCursorFormat sets the format written into cursors.
func WithCursorFormat(f CursorFormat) Option {
	return func(e *Engine) { e.format = f }
}

// WithPublisher sets where progression events go.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.bus = p }
}

// New creates an Engine over store.
func New(store *library.Store, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		format: FormatTitle,
		log:    logger.With().Str("component", "progression").Logger(),
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// lock serializes callers for one show title within this process.
func (e *Engine) lock(showTitle string) func() {
	key := strings.ToLower(showTitle)
	e.mu.Lock()
	m, ok := e.locks[key]
	if !ok {
		m = &sync.Mutex{}
		e.locks[key] = m
	}
	e.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// step is the outcome of one advance computation.
type step struct {
	show      *library.Show // nil when the show row is missing
	episode   *library.Episode
	from      cursorKind
	wrapped   bool
	recovered bool
	lastID    int64
	cursor    string // written by NextEpisode
}

func (e *Engine) plan(tx *library.Tx, showTitle string) (*step, error) {
	st := &step{}
	cursor := ""
	show, err := tx.GetShow(showTitle)
	switch {
	case err == nil:
		st.show = show
		cursor = show.Cursor
	case !errors.Is(err, library.ErrNotFound):
		return nil, err
	}

	ref, kind, err := resolveCursor(tx, showTitle, cursor)
	switch {
	case errors.Is(err, library.ErrInvalidState):
		st.recovered = true
	case err != nil:
		return nil, err
	case kind != cursorEmpty:
		st.from = kind
		st.lastID = ref.ID
		next, err := tx.EpisodeAfter(showTitle, ref.ID)
		if err == nil {
			st.episode = next
			return st, nil
		}
		if !errors.Is(err, library.ErrNotFound) {
			return nil, err
		}
		st.wrapped = true
	}

	first, err := tx.FirstEpisode(showTitle)
	if err != nil {
		return nil, err
	}
	st.episode = first
	return st, nil
}

// NextEpisode returns the episode to play next for showTitle and moves the
// show's cursor onto it. An unresolvable cursor restarts the show from its
// first episode. Returns library.ErrNotFound when the show has no episodes.
func (e *Engine) NextEpisode(ctx context.Context, showTitle string) (*library.Episode, error) {
	unlock := e.lock(showTitle)
	defer unlock()

	var st *step
	err := e.store.InTx(func(tx *library.Tx) error {
		var err error
		if st, err = e.plan(tx, showTitle); err != nil {
			return err
		}
		if st.cursor, err = encodeCursor(tx, e.format, st.episode); err != nil {
			return err
		}
		if st.show == nil {
			// Episodes exist without a show row: create one to hold the cursor.
			sh := &library.Show{Title: st.episode.ShowTitle, Cursor: st.cursor, Section: st.episode.Section}
			_, err := tx.UpsertShow(sh)
			return err
		}
		return tx.SetShowCursor(st.show.Title, st.cursor)
	})
	if err != nil {
		return nil, fmt.Errorf("next episode of %q: %w", showTitle, err)
	}

	e.report(ctx, showTitle, st)
	return st.episode, nil
}

// Peek returns what NextEpisode would return without moving the cursor.
func (e *Engine) Peek(showTitle string) (*library.Episode, error) {
	unlock := e.lock(showTitle)
	defer unlock()

	var ep *library.Episode
	err := e.store.InTx(func(tx *library.Tx) error {
		st, err := e.plan(tx, showTitle)
		if err != nil {
			return err
		}
		ep = st.episode
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("peek %q: %w", showTitle, err)
	}
	return ep, nil
}

// Cursor returns the stored cursor of showTitle, empty when the show has
// no row yet.
func (e *Engine) Cursor(showTitle string) (string, error) {
	sh, err := e.store.GetShow(showTitle)
	if errors.Is(err, library.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sh.Cursor, nil
}

// RestoreCursor puts back a cursor previously returned by Cursor.
func (e *Engine) RestoreCursor(showTitle, cursor string) error {
	unlock := e.lock(showTitle)
	defer unlock()

	if err := e.store.SetShowCursor(showTitle, cursor); err != nil {
		return fmt.Errorf("restore cursor of %q: %w", showTitle, err)
	}
	return nil
}

// Reset clears the cursor so the show restarts from its first episode.
func (e *Engine) Reset(showTitle string) error {
	unlock := e.lock(showTitle)
	defer unlock()

	if err := e.store.SetShowCursor(showTitle, ""); err != nil {
		return fmt.Errorf("reset %q: %w", showTitle, err)
	}
	e.log.Info().Str("show", showTitle).Msg("cursor reset")
	return nil
}

func (e *Engine) report(ctx context.Context, showTitle string, st *step) {
	ep := st.episode
	metrics.EpisodesAdvancedTotal.Inc()

	var evs []events.Event
	if st.recovered {
		metrics.CursorRecoveriesTotal.Inc()
		old := ""
		if st.show != nil {
			old = st.show.Cursor
		}
		e.log.Warn().Str("show", showTitle).Str("cursor", old).Msg("cursor matches no episode, restarting show")
		evs = append(evs, &events.CursorRecovered{
			BaseEvent: events.NewBaseEvent(events.EventCursorRecovered, events.EntityShow, ep.ShowTitle),
			ShowTitle: ep.ShowTitle,
			Cursor:    old,
		})
	}
	if st.wrapped {
		metrics.SeriesWrapsTotal.Inc()
		e.log.Info().Str("show", showTitle).Int64("last_episode_id", st.lastID).Msg("series wrapped")
		evs = append(evs, &events.SeriesWrapped{
			BaseEvent: events.NewBaseEvent(events.EventSeriesWrapped, events.EntityShow, ep.ShowTitle),
			ShowTitle: ep.ShowTitle,
			LastID:    st.lastID,
		})
	}
	e.log.Debug().
		Str("show", showTitle).
		Str("resolved_by", st.from.String()).
		Int64("episode_id", ep.ID).
		Str("episode", ep.Title).
		Msg("episode advanced")
	evs = append(evs, &events.EpisodeAdvanced{
		BaseEvent:     events.NewBaseEvent(events.EventEpisodeAdvanced, events.EntityShow, ep.ShowTitle),
		ShowTitle:     ep.ShowTitle,
		EpisodeID:     ep.ID,
		EpisodeTitle:  ep.Title,
		SeasonNumber:  ep.SeasonNumber,
		EpisodeNumber: ep.EpisodeNumber,
		Cursor:        st.cursor,
	})

	if e.bus == nil {
		return
	}
	for _, ev := range evs {
		if err := e.bus.Publish(ctx, ev); err != nil {
			e.log.Error().Err(err).Str("type", ev.EventType()).Msg("publish failed")
		}
	}
}
