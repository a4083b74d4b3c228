package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	v1 "github.com/vmunix/pseudotv/internal/api/v1"
	"github.com/vmunix/pseudotv/internal/config"
	"github.com/vmunix/pseudotv/internal/database"
	"github.com/vmunix/pseudotv/internal/events"
	"github.com/vmunix/pseudotv/internal/guide"
	"github.com/vmunix/pseudotv/internal/importer"
	"github.com/vmunix/pseudotv/internal/library"
	"github.com/vmunix/pseudotv/internal/logging"
	"github.com/vmunix/pseudotv/internal/planner"
	"github.com/vmunix/pseudotv/internal/progression"
	"github.com/vmunix/pseudotv/internal/schedule"
	"github.com/vmunix/pseudotv/internal/selection"
	"github.com/vmunix/pseudotv/internal/server"
)

const eventRetention = 30 * 24 * time.Hour

func runServer(configPath string) error {
	if configPath == "" {
		p, err := config.Discover()
		if err != nil {
			return err
		}
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.Setup(cfg.Server.LogLevel, cfg.Server.LogFormat)
	if err != nil {
		return err
	}
	loc, err := cfg.Channel.Location()
	if err != nil {
		return fmt.Errorf("channel timezone: %w", err)
	}
	rebuildAt, err := cfg.Channel.RebuildOffset()
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}
	format, err := progression.ParseCursorFormat(cfg.Channel.CursorFormat)
	if err != nil {
		return fmt.Errorf("channel: %w", err)
	}

	// Ensure database directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := database.OpenAndMigrate(cfg.Database.Path, database.DefaultConfig())
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	// === Stores and bus ===
	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, logger)
	defer func() { _ = bus.Close() }()

	lib := library.NewStore(db)
	sched := schedule.NewStore(db, logger)

	// === Services ===
	engine := progression.New(lib, logger,
		progression.WithCursorFormat(format),
		progression.WithPublisher(bus),
	)
	picker := selection.New(lib, nil)
	cmin, cmax := cfg.Channel.CommercialRange()
	plan := planner.New(sched, engine, picker, lib, bus, planner.Options{
		CommercialFill: cfg.Channel.CommercialFill,
		CommercialMin:  cmin,
		CommercialMax:  cmax,
	}, logger)

	var syncer Syncer
	if cfg.Plex != nil {
		client := importer.NewPlexClient(cfg.Plex.URL, cfg.Plex.Token, logger)
		syncer = importer.New(client, lib, sectionConfigs(cfg.Plex), bus, logger)
	}
	job := &dailyJob{
		syncer:    syncer,
		planner:   plan,
		events:    eventLog,
		retention: eventRetention,
		log:       logger.With().Str("component", "daily").Logger(),
	}

	channel := guide.ChannelInfo{ID: cfg.Channel.ID, Name: cfg.Channel.Name, Icon: cfg.Channel.Icon}
	api, err := v1.New(v1.ServerDeps{
		Timeline:  sched,
		Episodes:  engine,
		Picker:    picker,
		Rebuilder: plan,
		EventLog:  eventLog,
		Channel:   channel,
		Now:       func() time.Time { return time.Now().In(loc) },
	}, logger)
	if err != nil {
		return err
	}

	// Restarting must not advance every show again, so only an empty
	// snapshot is rebuilt before the first scheduled run.
	existing, err := sched.ListDailySchedule()
	if err != nil {
		return fmt.Errorf("read daily schedule: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().
		Str("addr", addr).
		Str("database", cfg.Database.Path).
		Str("channel", cfg.Channel.Name).
		Str("timezone", loc.String()).
		Str("rebuild_at", cfg.Channel.RebuildAt).
		Bool("plex", syncer != nil).
		Str("guide", cfg.Guide.Path).
		Str("version", version).
		Msg("server starting")

	runner := server.NewRunner(server.Config{
		Addr:           addr,
		RebuildAt:      rebuildAt,
		RebuildOnStart: len(existing) == 0,
		Location:       loc,
		GuidePath:      cfg.Guide.Path,
		Channel:        channel,
	}, api.Handler(), job, sched, bus, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func sectionConfigs(p *config.PlexConfig) []importer.SectionConfig {
	out := make([]importer.SectionConfig, len(p.Sections))
	for i, s := range p.Sections {
		out[i] = importer.SectionConfig{Name: s.Name, Kind: s.Kind, CustomSection: s.CustomSection}
	}
	return out
}

// Syncer refreshes the local library from the media server.
type Syncer interface {
	Sync(ctx context.Context) (importer.Counts, error)
}

// Pruner drops old events.
type Pruner interface {
	Prune(olderThan time.Duration) (int64, error)
}

// dailyJob is the scheduled rebuild: refresh the library when a media
// server is configured, regenerate the day, then trim the event log.
type dailyJob struct {
	syncer    Syncer // nil without plex
	planner   server.Rebuilder
	events    Pruner
	retention time.Duration
	log       zerolog.Logger
}

func (j *dailyJob) Rebuild(ctx context.Context, day time.Time) (planner.Summary, error) {
	if j.syncer != nil {
		// A failed sync still rebuilds from the library we already have.
		if _, err := j.syncer.Sync(ctx); err != nil {
			j.log.Warn().Err(err).Msg("library sync failed, rebuilding from existing library")
		}
	}
	sum, err := j.planner.Rebuild(ctx, day)
	if err != nil {
		return sum, err
	}
	if j.events != nil && j.retention > 0 {
		n, err := j.events.Prune(j.retention)
		if err != nil {
			j.log.Warn().Err(err).Msg("prune events")
		} else if n > 0 {
			j.log.Debug().Int64("pruned", n).Msg("events pruned")
		}
	}
	return sum, nil
}
