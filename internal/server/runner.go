// Package server runs the daemon's long-lived components.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/pseudotv/internal/events"
	"github.com/vmunix/pseudotv/internal/guide"
	"github.com/vmunix/pseudotv/internal/planner"
	"github.com/vmunix/pseudotv/internal/schedule"
)

// Config for the daemon runner.
type Config struct {
	Addr            string
	RebuildAt       time.Duration // offset from local midnight
	RebuildOnStart  bool
	Location        *time.Location
	GuidePath       string // empty disables the XMLTV export
	Channel         guide.ChannelInfo
	ShutdownTimeout time.Duration
}

// Rebuilder regenerates the daily schedule.
type Rebuilder interface {
	Rebuild(ctx context.Context, day time.Time) (planner.Summary, error)
}

// DailySource lists the materialized schedule for the guide export.
type DailySource interface {
	ListDailySchedule() ([]schedule.Placement, error)
}

// Subscriber delivers channel events.
type Subscriber interface {
	Subscribe(eventType string, bufferSize int) <-chan events.Event
	Unsubscribe(ch <-chan events.Event)
}

// Runner serves the HTTP API, rebuilds the schedule once a day and keeps
// the guide file in step with every rebuild.
type Runner struct {
	config    Config
	handler   http.Handler
	rebuilder Rebuilder
	daily     DailySource
	events    Subscriber
	logger    zerolog.Logger
	now       func() time.Time

	ready chan struct{}
	addr  net.Addr
}

// NewRunner creates a new runner. rebuilder and daily may be nil, which
// disables the rebuild loop and the guide export. With a non-nil bus the
// guide is rewritten on every ScheduleRebuilt event, including rebuilds
// requested over the API; without one only the runner's own rebuilds
// refresh it.
func NewRunner(cfg Config, handler http.Handler, rebuilder Rebuilder, daily DailySource, bus Subscriber, logger zerolog.Logger) *Runner {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Runner{
		config:    cfg,
		handler:   handler,
		rebuilder: rebuilder,
		daily:     daily,
		events:    bus,
		logger:    logger.With().Str("component", "runner").Logger(),
		now:       time.Now,
		ready:     make(chan struct{}),
	}
}

// Ready is closed once the HTTP listener is bound.
func (r *Runner) Ready() <-chan struct{} { return r.ready }

// Addr returns the bound listener address. Valid after Ready is closed.
func (r *Runner) Addr() net.Addr { return r.addr }

// Run starts all components.
// It blocks until the context is canceled or a component fails.
func (r *Runner) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", r.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.config.Addr, err)
	}
	r.addr = ln.Addr()
	close(r.ready)

	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	if r.guideEnabled() && r.events != nil {
		// Subscribed before the first rebuild so its event is not missed.
		rebuilt := r.events.Subscribe(events.EventScheduleRebuilt, 8)
		g.Go(func() error {
			defer r.events.Unsubscribe(rebuilt)
			return r.guideLoop(ctx, rebuilt)
		})
	}

	g.Go(func() error {
		r.logger.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		r.logger.Info().Msg("http server stopped")
		return nil
	})

	if r.rebuilder != nil {
		g.Go(func() error {
			return r.rebuildLoop(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}

func (r *Runner) rebuildLoop(ctx context.Context) error {
	if r.config.RebuildOnStart {
		r.rebuild(ctx, r.now().In(r.config.Location))
	}
	for {
		next := nextRun(r.now(), r.config.RebuildAt, r.config.Location)
		r.logger.Debug().Time("at", next).Msg("next schedule rebuild")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			r.rebuild(ctx, next)
		}
	}
}

// rebuild regenerates day's schedule. Failures are logged; the previous
// schedule stays live until the next attempt.
func (r *Runner) rebuild(ctx context.Context, day time.Time) {
	if _, err := r.rebuilder.Rebuild(ctx, day); err != nil {
		if ctx.Err() == nil {
			r.logger.Error().Err(err).Msg("scheduled rebuild failed")
		}
		return
	}
	if r.events == nil && r.guideEnabled() {
		r.writeGuide(day)
	}
}

func (r *Runner) guideEnabled() bool { return r.config.GuidePath != "" && r.daily != nil }

// guideLoop rewrites the guide after every rebuild until ctx is done or the
// bus closes.
func (r *Runner) guideLoop(ctx context.Context, rebuilt <-chan events.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-rebuilt:
			if !ok {
				return nil
			}
			day := r.now().In(r.config.Location)
			if sr, ok := ev.(*events.ScheduleRebuilt); ok {
				if d, err := time.ParseInLocation(time.DateOnly, sr.Day, r.config.Location); err == nil {
					day = d
				}
			}
			r.writeGuide(day)
		}
	}
}

// writeGuide exports the stored daily schedule as day's XMLTV guide.
func (r *Runner) writeGuide(day time.Time) {
	entries, err := r.daily.ListDailySchedule()
	if err != nil {
		r.logger.Error().Err(err).Msg("read schedule for guide")
		return
	}
	if err := guide.WriteFile(r.config.GuidePath, guide.Build(r.config.Channel, entries, day)); err != nil {
		r.logger.Error().Err(err).Str("path", r.config.GuidePath).Msg("write guide")
		return
	}
	r.logger.Info().Str("path", r.config.GuidePath).Int("programmes", len(entries)).Msg("guide written")
}

// nextRun returns the first instant strictly after now that is offset past
// a local midnight in loc.
func nextRun(now time.Time, offset time.Duration, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	at := time.Date(y, m, d, 0, 0, 0, 0, loc).Add(offset)
	if !at.After(local) {
		at = time.Date(y, m, d+1, 0, 0, 0, 0, loc).Add(offset)
	}
	return at
}
