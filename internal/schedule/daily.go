package schedule

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vmunix/pseudotv/internal/library"
)

type dailyRow struct {
	ID            int64  `db:"id"`
	Title         string `db:"title"`
	EpisodeNumber int    `db:"episodeNumber"`
	SeasonNumber  int    `db:"seasonNumber"`
	ShowTitle     string `db:"showTitle"`
	Duration      int64  `db:"duration"`
	StartTime     string `db:"startTime"`
	EndTime       string `db:"endTime"`
	DayOfWeek     string `db:"dayOfWeek"`
	SectionType   string `db:"sectionType"`
	ExternalID    string `db:"plexMediaID"`
	Section       string `db:"customSectionName"`
}

const dailyColumns = `id, COALESCE(title, '') AS title, COALESCE(episodeNumber, 0) AS episodeNumber,
	COALESCE(seasonNumber, 0) AS seasonNumber, COALESCE(showTitle, '') AS showTitle,
	COALESCE(duration, 0) AS duration, COALESCE(startTime, '') AS startTime,
	COALESCE(endTime, '') AS endTime, COALESCE(dayOfWeek, '') AS dayOfWeek,
	COALESCE(sectionType, '') AS sectionType, COALESCE(plexMediaID, '') AS plexMediaID,
	COALESCE(customSectionName, '') AS customSectionName`

func (r dailyRow) placement() (Placement, error) {
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return Placement{}, fmt.Errorf("daily entry %d: %w", r.ID, err)
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return Placement{}, fmt.Errorf("daily entry %d: %w", r.ID, err)
	}
	m := Media{
		Title:      r.Title,
		Duration:   time.Duration(r.Duration) * time.Millisecond,
		ExternalID: r.ExternalID,
		Section:    r.Section,
	}
	var item ScheduleItem
	switch r.SectionType {
	case SectionTV:
		item = EpisodeItem{Media: m, ShowTitle: r.ShowTitle, SeasonNumber: r.SeasonNumber, EpisodeNumber: r.EpisodeNumber}
	case SectionMovies:
		item = MovieItem{m}
	case SectionCommercials:
		item = CommercialItem{m}
	case SectionMusic:
		item = MusicItem{m}
	case SectionVideos:
		item = VideoItem{m}
	default:
		if r.ShowTitle != "" {
			item = EpisodeItem{Media: m, ShowTitle: r.ShowTitle, SeasonNumber: r.SeasonNumber, EpisodeNumber: r.EpisodeNumber}
		} else {
			item = VideoItem{m}
		}
	}
	return Placement{ID: r.ID, Item: item, Start: start, End: end, DayOfWeek: r.DayOfWeek}, nil
}

func appendDaily(q sqlx.Execer, p *Placement) error {
	m := p.Item.Common()
	var show string
	var season, episode int
	if ep, ok := p.Item.(EpisodeItem); ok {
		show, season, episode = ep.ShowTitle, ep.SeasonNumber, ep.EpisodeNumber
	}
	result, err := q.Exec(`
		INSERT OR REPLACE INTO daily_schedule
			(unix, mediaID, title, episodeNumber, seasonNumber, showTitle, duration,
			 startTime, endTime, dayOfWeek, sectionType, plexMediaID, customSectionName)
		VALUES (?, 0, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(), m.Title, episode, season, show, m.Duration.Milliseconds(),
		p.Start.String(), p.End.String(), p.DayOfWeek, p.Item.SectionType(), m.ExternalID, m.Section,
	)
	if err != nil {
		return fmt.Errorf("append %q at %s: %w", m.Title, p.Start, library.MapError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	p.ID = id
	return nil
}

// ClearDailySchedule removes every materialized entry.
func (s *Store) ClearDailySchedule() error {
	if _, err := s.db.Exec("DELETE FROM daily_schedule"); err != nil {
		return fmt.Errorf("clear daily schedule: %w", library.MapError(err))
	}
	return nil
}

// AppendToDailySchedule persists one placement and sets its ID.
func (s *Store) AppendToDailySchedule(p *Placement) error {
	return appendDaily(s.db, p)
}

// ReplaceDailySchedule clears the daily schedule and appends every
// placement in one transaction. On error the previous schedule is kept.
func (s *Store) ReplaceDailySchedule(ps []Placement) error {
	err := s.inTx(func(tx *sqlx.Tx) error {
		if _, err := tx.Exec("DELETE FROM daily_schedule"); err != nil {
			return fmt.Errorf("clear daily schedule: %w", library.MapError(err))
		}
		for i := range ps {
			if err := appendDaily(tx, &ps[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug().Int("entries", len(ps)).Msg("daily schedule replaced")
	return nil
}

// ListDailySchedule returns every materialized entry ordered by start time.
// Rows whose times cannot be read are skipped.
func (s *Store) ListDailySchedule() ([]Placement, error) {
	var rows []dailyRow
	if err := s.db.Select(&rows, "SELECT "+dailyColumns+" FROM daily_schedule ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list daily schedule: %w", library.MapError(err))
	}
	out := make([]Placement, 0, len(rows))
	for _, r := range rows {
		p, err := r.placement()
		if err != nil {
			s.log.Warn().Err(err).Msg("skipping unreadable daily entry")
			continue
		}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b Placement) int { return cmp.Compare(a.Start, b.Start) })
	return out, nil
}

// NowPlaying returns the entry whose [start, end) window contains the time
// of day of at. When windows overlap the earliest start wins. Returns
// library.ErrNotFound in a gap or before the schedule is built.
func (s *Store) NowPlaying(at time.Time) (*Placement, error) {
	entries, err := s.ListDailySchedule()
	if err != nil {
		return nil, err
	}
	now := ClockOf(at)
	for i := range entries {
		if entries[i].Window().Contains(now) {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("now playing at %s: %w", now, library.ErrNotFound)
}

// UpNext returns up to n entries starting after at, in playout order. The
// daily schedule repeats, so the list continues past midnight into the
// entries that started earlier in the day. The entry playing at at is not
// included.
func (s *Store) UpNext(at time.Time, n int) ([]Placement, error) {
	entries, err := s.ListDailySchedule()
	if err != nil {
		return nil, err
	}
	if n <= 0 || len(entries) == 0 {
		return nil, nil
	}
	now := ClockOf(at)
	split, _ := slices.BinarySearchFunc(entries, now, func(p Placement, c Clock) int {
		if p.Start <= c {
			return -1
		}
		return 1
	})
	rotated := append(slices.Clone(entries[split:]), entries[:split]...)

	out := make([]Placement, 0, n)
	for _, p := range rotated {
		if p.Window().Contains(now) {
			continue
		}
		out = append(out, p)
		if len(out) == n {
			break
		}
	}
	return out, nil
}
