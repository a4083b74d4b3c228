package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vmunix/pseudotv/internal/events"
	"github.com/vmunix/pseudotv/internal/guide"
	"github.com/vmunix/pseudotv/internal/planner"
	"github.com/vmunix/pseudotv/internal/schedule"
)

type stubRebuilder struct {
	mu   sync.Mutex
	days []time.Time
	err  error
	done chan struct{}
}

func (s *stubRebuilder) Rebuild(_ context.Context, day time.Time) (planner.Summary, error) {
	s.mu.Lock()
	s.days = append(s.days, day)
	s.mu.Unlock()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	return planner.Summary{Day: day}, s.err
}

type emptyDaily struct{}

func (emptyDaily) ListDailySchedule() ([]schedule.Placement, error) { return nil, nil }

func runInBackground(t *testing.T, r *Runner) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()

	select {
	case <-r.Ready():
	case err := <-errc:
		stop()
		t.Fatalf("runner exited early: %v", err)
	case <-time.After(5 * time.Second):
		stop()
		t.Fatal("runner never became ready")
	}
	return func() error {
		stop()
		select {
		case err := <-errc:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("runner did not stop")
			return nil
		}
	}
}

func TestRunner_ServesHandler(t *testing.T) {
	defer goleak.VerifyNone(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	})
	r := NewRunner(Config{Addr: "127.0.0.1:0"}, mux, nil, nil, nil, zerolog.Nop())
	stop := runInBackground(t, r)

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + r.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	err = stop()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_ListenError(t *testing.T) {
	r := NewRunner(Config{Addr: "256.0.0.1:bad"}, http.NewServeMux(), nil, nil, nil, zerolog.Nop())
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestRunner_RebuildOnStartWritesGuide(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "guide.xml")
	done := make(chan struct{})
	rb := &stubRebuilder{done: done}
	cfg := Config{
		Addr:           "127.0.0.1:0",
		RebuildAt:      3 * time.Hour,
		RebuildOnStart: true,
		Location:       time.UTC,
		GuidePath:      path,
		Channel:        guide.ChannelInfo{ID: "pseudotv.1", Name: "PseudoTV"},
	}
	r := NewRunner(cfg, http.NewServeMux(), rb, emptyDaily{}, nil, zerolog.Nop())
	stop := runInBackground(t, r)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("rebuild never ran")
	}
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, stop(), context.Canceled)

	rb.mu.Lock()
	defer rb.mu.Unlock()
	assert.Len(t, rb.days, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<channel id="pseudotv.1">`)
}

func TestRunner_RebuildFailureKeepsRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "guide.xml")
	done := make(chan struct{})
	rb := &stubRebuilder{done: done, err: errors.New("store down")}
	cfg := Config{Addr: "127.0.0.1:0", RebuildOnStart: true, Location: time.UTC, GuidePath: path}
	r := NewRunner(cfg, http.NewServeMux(), rb, emptyDaily{}, nil, zerolog.Nop())
	stop := runInBackground(t, r)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("rebuild never ran")
	}
	assert.ErrorIs(t, stop(), context.Canceled)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "guide should not be written after a failed rebuild")
}

type oneShowDaily struct{}

func (oneShowDaily) ListDailySchedule() ([]schedule.Placement, error) {
	item := schedule.EpisodeItem{Media: schedule.Media{Title: "Pilot", Duration: 30 * time.Minute}, ShowTitle: "Cheers"}
	return []schedule.Placement{schedule.Place(item, schedule.NewClock(6, 0, 0), time.Friday)}, nil
}

func TestRunner_RewritesGuideOnRebuildEvent(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := events.NewBus(nil, zerolog.Nop())
	defer func() { _ = bus.Close() }()

	path := filepath.Join(t.TempDir(), "guide.xml")
	cfg := Config{Addr: "127.0.0.1:0", Location: time.UTC, GuidePath: path, Channel: guide.ChannelInfo{ID: "pseudotv.1"}}
	// No rebuilder: the rebuild comes from elsewhere, as with the API.
	r := NewRunner(cfg, http.NewServeMux(), nil, oneShowDaily{}, bus, zerolog.Nop())
	stop := runInBackground(t, r)

	require.NoError(t, bus.Publish(context.Background(), &events.ScheduleRebuilt{
		BaseEvent: events.NewBaseEvent(events.EventScheduleRebuilt, events.EntitySchedule, "2024-05-03"),
		Day:       "2024-05-03",
		Entries:   1,
	}))

	var data []byte
	require.Eventually(t, func() bool {
		var err error
		data, err = os.ReadFile(path)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, string(data), `start="20240503060000 +0000"`)
	assert.Contains(t, string(data), "Cheers")

	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestRunner_GuideLoopEndsWhenBusCloses(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := events.NewBus(nil, zerolog.Nop())
	cfg := Config{Addr: "127.0.0.1:0", Location: time.UTC, GuidePath: filepath.Join(t.TempDir(), "guide.xml")}
	r := NewRunner(cfg, http.NewServeMux(), nil, emptyDaily{}, bus, zerolog.Nop())
	stop := runInBackground(t, r)

	require.NoError(t, bus.Close())
	assert.ErrorIs(t, stop(), context.Canceled)
}

func TestNextRun(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name   string
		now    time.Time
		offset time.Duration
		loc    *time.Location
		want   time.Time
	}{
		{"later today", time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC), 3 * time.Hour, time.UTC, time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)},
		{"already passed", time.Date(2024, 5, 1, 4, 0, 0, 0, time.UTC), 3 * time.Hour, time.UTC, time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC)},
		{"exactly now", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 0, time.UTC, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		{"local midnight", time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC), 0, ny, time.Date(2024, 5, 1, 0, 0, 0, 0, ny)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextRun(tt.now, tt.offset, tt.loc)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}
