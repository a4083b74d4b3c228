package schedule

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vmunix/pseudotv/internal/library"
)

// ErrInvalidHour is returned for an hour outside 0-23.
var ErrInvalidHour = errors.New("hour must be between 0 and 23")

// Day selectors accepted in the weekly template besides weekday names.
const (
	DayEveryday = "everyday"
	DayWeekdays = "weekdays"
	DayWeekends = "weekends"
)

// WeeklyEntry is a recurring slot of the weekly template. The policy
// fields are stored as written and interpreted by the planner.
type WeeklyEntry struct {
	ID         int64
	Title      string
	Start      Clock
	End        Clock
	DayOfWeek  string // weekday name, everyday, weekdays or weekends
	Section    string // library section the slot draws from
	StrictTime bool   // start exactly at Start instead of after the previous item
	TimeShift  string // minutes
	OverlapMax string // minutes the chosen item may run past End
	Xtra       string
}

// Window returns the slot's time window.
func (w WeeklyEntry) Window() Window { return Window{Start: w.Start, End: w.End} }

// Overlap returns OverlapMax as a duration; unreadable values mean zero.
func (w WeeklyEntry) Overlap() time.Duration {
	return minutes(w.OverlapMax)
}

// Shift returns TimeShift as a duration; unreadable values mean zero.
func (w WeeklyEntry) Shift() time.Duration {
	return minutes(w.TimeShift)
}

func minutes(s string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return time.Duration(n) * time.Minute
}

// AirsOn reports whether the entry applies to weekday.
func (w WeeklyEntry) AirsOn(weekday time.Weekday) bool {
	switch strings.ToLower(strings.TrimSpace(w.DayOfWeek)) {
	case DayEveryday, "":
		return true
	case DayWeekdays:
		return weekday != time.Saturday && weekday != time.Sunday
	case DayWeekends:
		return weekday == time.Saturday || weekday == time.Sunday
	case strings.ToLower(weekday.String()):
		return true
	}
	return false
}

type weeklyRow struct {
	ID         int64  `db:"id"`
	Title      string `db:"title"`
	StartTime  string `db:"startTime"`
	EndTime    string `db:"endTime"`
	DayOfWeek  string `db:"dayOfWeek"`
	Section    string `db:"section"`
	StrictTime string `db:"strictTime"`
	TimeShift  string `db:"timeShift"`
	OverlapMax string `db:"overlapMax"`
	Xtra       string `db:"xtra"`
}

const weeklyColumns = `id, COALESCE(title, '') AS title, COALESCE(startTime, '') AS startTime,
	COALESCE(endTime, '') AS endTime, COALESCE(dayOfWeek, '') AS dayOfWeek,
	COALESCE(section, '') AS section, COALESCE(strictTime, '') AS strictTime,
	COALESCE(timeShift, '') AS timeShift, COALESCE(overlapMax, '') AS overlapMax,
	COALESCE(xtra, '') AS xtra`

func (r weeklyRow) entry() (WeeklyEntry, error) {
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return WeeklyEntry{}, fmt.Errorf("weekly entry %d: %w", r.ID, err)
	}
	end := start
	if r.EndTime != "" {
		if end, err = ParseClock(r.EndTime); err != nil {
			return WeeklyEntry{}, fmt.Errorf("weekly entry %d: %w", r.ID, err)
		}
	}
	strict, _ := strconv.ParseBool(strings.TrimSpace(r.StrictTime))
	return WeeklyEntry{
		ID:         r.ID,
		Title:      r.Title,
		Start:      start,
		End:        end,
		DayOfWeek:  r.DayOfWeek,
		Section:    r.Section,
		StrictTime: strict,
		TimeShift:  r.TimeShift,
		OverlapMax: r.OverlapMax,
		Xtra:       r.Xtra,
	}, nil
}

// AddWeeklyEntry stores a template slot and sets its ID.
func (s *Store) AddWeeklyEntry(w *WeeklyEntry) error {
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO schedule
			(unix, mediaID, title, duration, startTime, endTime, dayOfWeek, startTimeUnix,
			 section, strictTime, timeShift, overlapMax, xtra)
		VALUES (?, 0, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		now.Unix(), w.Title, w.Window().Length().Milliseconds(), w.Start.String(), w.End.String(),
		w.DayOfWeek, w.Start.On(now).Unix(), w.Section, strconv.FormatBool(w.StrictTime),
		w.TimeShift, w.OverlapMax, w.Xtra,
	)
	if err != nil {
		return fmt.Errorf("add weekly entry %q: %w", w.Title, library.MapError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	w.ID = id
	return nil
}

// ClearWeeklySchedule removes every template slot.
func (s *Store) ClearWeeklySchedule() error {
	if _, err := s.db.Exec("DELETE FROM schedule"); err != nil {
		return fmt.Errorf("clear weekly schedule: %w", library.MapError(err))
	}
	return nil
}

// ListWeeklySchedule returns the template ordered by start time.
func (s *Store) ListWeeklySchedule() ([]WeeklyEntry, error) {
	var rows []weeklyRow
	if err := s.db.Select(&rows, "SELECT "+weeklyColumns+" FROM schedule ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list weekly schedule: %w", library.MapError(err))
	}
	out := make([]WeeklyEntry, 0, len(rows))
	for _, r := range rows {
		w, err := r.entry()
		if err != nil {
			s.log.Warn().Err(err).Msg("skipping unreadable weekly entry")
			continue
		}
		out = append(out, w)
	}
	slices.SortStableFunc(out, func(a, b WeeklyEntry) int { return cmp.Compare(a.Start, b.Start) })
	return out, nil
}

// ListWeeklyScheduleFrom returns the template rotated to begin at hour:
// entries starting at or after hour first, then the earlier ones. Nothing is
// dropped.
func (s *Store) ListWeeklyScheduleFrom(hour int) ([]WeeklyEntry, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("rotate weekly schedule at %d: %w", hour, ErrInvalidHour)
	}
	entries, err := s.ListWeeklySchedule()
	if err != nil {
		return nil, err
	}
	split := slices.IndexFunc(entries, func(w WeeklyEntry) bool { return w.Start.Hour() >= hour })
	if split <= 0 {
		return entries, nil
	}
	return append(slices.Clone(entries[split:]), entries[:split]...), nil
}

// ListWeeklyScheduleForDay returns the slots that air on weekday, ordered
// by start time.
func (s *Store) ListWeeklyScheduleForDay(weekday time.Weekday) ([]WeeklyEntry, error) {
	entries, err := s.ListWeeklySchedule()
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(entries, func(w WeeklyEntry) bool { return !w.AirsOn(weekday) }), nil
}
