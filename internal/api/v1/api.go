// Package v1 implements the channel's REST API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vmunix/pseudotv/internal/guide"
	"github.com/vmunix/pseudotv/internal/library"
	"github.com/vmunix/pseudotv/internal/schedule"
	"github.com/vmunix/pseudotv/internal/selection"
)

const defaultUpNext = 5

// Server is the v1 API server.
type Server struct {
	deps ServerDeps
	log  zerolog.Logger
}

// New creates a new v1 API server.
func New(deps ServerDeps, logger zerolog.Logger) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingDependency, err)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Server{deps: deps, log: logger.With().Str("component", "api").Logger()}, nil
}

// Handler returns the router serving the API and /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLog)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", s.RegisterRoutes)
	return r
}

// RegisterRoutes registers API routes on the given router.
func (s *Server) RegisterRoutes(r chi.Router) {
	// Playback
	r.Get("/now-playing", s.nowPlaying)
	r.Get("/up-next", s.upNext)

	// Schedules
	r.Get("/schedule/daily", s.dailySchedule)
	r.Get("/schedule/weekly", s.weeklySchedule)
	r.With(s.requireRebuilder).Post("/schedule/rebuild", s.rebuild)
	r.Get("/guide.xml", s.guideXML)

	// Catalog
	r.Get("/shows/{title}/next", s.peekEpisode)
	r.Post("/shows/{title}/next", s.nextEpisode)
	r.With(s.requirePicker).Get("/pick/{category}", s.pick)

	// System
	r.Get("/events", s.listEvents)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// storeError maps a store error onto a response.
func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	s.log.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, val)
	}
	return i, nil
}

// maxSeconds is the longest duration querySeconds accepts.
const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

// querySeconds reads an optional duration given in seconds, returning
// defaultVal when it is absent.
func querySeconds(r *http.Request, name string, defaultVal time.Duration) (time.Duration, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(n) || n < 0 || n > maxSeconds {
		return 0, fmt.Errorf("%s must be a number of seconds between 0 and %.0f, got %q", name, maxSeconds, val)
	}
	return time.Duration(n * float64(time.Second)), nil
}

func (s *Server) nowPlaying(w http.ResponseWriter, r *http.Request) {
	now := s.deps.Now()
	p, err := s.deps.Timeline.NowPlaying(now)
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOTHING_PLAYING", "nothing is scheduled right now")
		return
	}
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nowPlayingResponse{
		entryResponse: toEntry(*p),
		RemainingMs:   schedule.ClockOf(now).Until(p.End).Milliseconds(),
	})
}

func (s *Server) upNext(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "n", defaultUpNext)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_COUNT", err.Error())
		return
	}
	if n <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_COUNT", "n must be positive")
		return
	}
	ps, err := s.deps.Timeline.UpNext(s.deps.Now(), n)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries(ps))
}

func (s *Server) dailySchedule(w http.ResponseWriter, r *http.Request) {
	ps, err := s.deps.Timeline.ListDailySchedule()
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries(ps))
}

func entries(ps []schedule.Placement) listEntriesResponse {
	resp := listEntriesResponse{Items: make([]entryResponse, len(ps)), Total: len(ps)}
	for i, p := range ps {
		resp.Items[i] = toEntry(p)
	}
	return resp
}

func (s *Server) weeklySchedule(w http.ResponseWriter, r *http.Request) {
	var (
		ws  []schedule.WeeklyEntry
		err error
	)
	if from := r.URL.Query().Get("from"); from != "" {
		hour, convErr := strconv.Atoi(from)
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "INVALID_HOUR", "from must be an hour between 0 and 23")
			return
		}
		ws, err = s.deps.Timeline.ListWeeklyScheduleFrom(hour)
	} else {
		ws, err = s.deps.Timeline.ListWeeklySchedule()
	}
	if errors.Is(err, schedule.ErrInvalidHour) {
		writeError(w, http.StatusBadRequest, "INVALID_HOUR", err.Error())
		return
	}
	if err != nil {
		s.storeError(w, err)
		return
	}

	resp := listWeeklyResponse{Items: make([]weeklyResponse, len(ws)), Total: len(ws)}
	for i, e := range ws {
		resp.Items[i] = toWeekly(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) rebuild(w http.ResponseWriter, r *http.Request) {
	day := s.deps.Now()
	if d := r.URL.Query().Get("day"); d != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, d, day.Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_DAY", "day must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	sum, err := s.deps.Rebuilder.Rebuild(r.Context(), day)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rebuildResponse{
		Day:     day.Format(time.DateOnly),
		Entries: sum.Entries,
		Skipped: sum.Skipped,
		Fillers: sum.Fillers,
	})
}

func (s *Server) guideXML(w http.ResponseWriter, r *http.Request) {
	ps, err := s.deps.Timeline.ListDailySchedule()
	if err != nil {
		s.storeError(w, err)
		return
	}
	tv := guide.Build(s.deps.Channel, ps, s.deps.Now())
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err := guide.Write(w, tv); err != nil {
		s.log.Error().Err(err).Msg("write guide")
	}
}

func (s *Server) nextEpisode(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	ep, err := s.deps.Episodes.NextEpisode(r.Context(), title)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEpisode(ep))
}

func (s *Server) peekEpisode(w http.ResponseWriter, r *http.Request) {
	ep, err := s.deps.Episodes.Peek(chi.URLParam(r, "title"))
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEpisode(ep))
}

func (s *Server) pick(w http.ResponseWriter, r *http.Request) {
	c, err := selection.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_CATEGORY", err.Error())
		return
	}
	minDur, err := querySeconds(r, "min", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_RANGE", err.Error())
		return
	}
	// No max means no upper bound.
	maxDur, err := querySeconds(r, "max", time.Duration(math.MaxInt64))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_RANGE", err.Error())
		return
	}

	item, err := s.deps.Picker.PickRandom(c, minDur, maxDur)
	if errors.Is(err, selection.ErrInvalidRange) {
		writeError(w, http.StatusBadRequest, "INVALID_RANGE", err.Error())
		return
	}
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMedia(item))
}
