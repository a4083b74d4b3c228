package schedule

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addWeekly(t *testing.T, s *Store, title string, start Clock, dayOfWeek string) {
	t.Helper()
	require.NoError(t, s.AddWeeklyEntry(&WeeklyEntry{
		Title:     title,
		Start:     start,
		End:       start.Add(30 * time.Minute),
		DayOfWeek: dayOfWeek,
		Section:   "TV Shows",
	}))
}

func weeklyTitles(ws []WeeklyEntry) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Title
	}
	return out
}

func TestWeeklySchedule_Ordering(t *testing.T) {
	s, _ := setupStore(t)
	addWeekly(t, s, "Evening", NewClock(19, 0, 0), DayEveryday)
	addWeekly(t, s, "Morning", NewClock(6, 0, 0), DayEveryday)
	addWeekly(t, s, "Noon", NewClock(12, 0, 0), DayEveryday)
	addWeekly(t, s, "Late", NewClock(23, 30, 0), DayEveryday)

	got, err := s.ListWeeklySchedule()
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"Morning", "Noon", "Evening", "Late"}, weeklyTitles(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestListWeeklyScheduleFrom_Rotates(t *testing.T) {
	s, _ := setupStore(t)
	addWeekly(t, s, "Morning", NewClock(6, 0, 0), DayEveryday)
	addWeekly(t, s, "Noon", NewClock(12, 0, 0), DayEveryday)
	addWeekly(t, s, "Evening", NewClock(19, 0, 0), DayEveryday)

	got, err := s.ListWeeklyScheduleFrom(12)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"Noon", "Evening", "Morning"}, weeklyTitles(got)); diff != "" {
		t.Errorf("rotation mismatch (-want +got):\n%s", diff)
	}

	got, err = s.ListWeeklyScheduleFrom(20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Morning", "Noon", "Evening"}, weeklyTitles(got))

	got, err = s.ListWeeklyScheduleFrom(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Morning", "Noon", "Evening"}, weeklyTitles(got))

	_, err = s.ListWeeklyScheduleFrom(24)
	assert.ErrorIs(t, err, ErrInvalidHour)
}

func TestListWeeklyScheduleForDay(t *testing.T) {
	s, _ := setupStore(t)
	addWeekly(t, s, "Daily", NewClock(6, 0, 0), DayEveryday)
	addWeekly(t, s, "Work", NewClock(7, 0, 0), DayWeekdays)
	addWeekly(t, s, "Cartoons", NewClock(8, 0, 0), DayWeekends)
	addWeekly(t, s, "Wed Movie", NewClock(20, 0, 0), "Wednesday")

	got, err := s.ListWeeklyScheduleForDay(time.Wednesday)
	require.NoError(t, err)
	assert.Equal(t, []string{"Daily", "Work", "Wed Movie"}, weeklyTitles(got))

	got, err = s.ListWeeklyScheduleForDay(time.Saturday)
	require.NoError(t, err)
	assert.Equal(t, []string{"Daily", "Cartoons"}, weeklyTitles(got))
}

func TestAddWeeklyEntry_PolicyFields(t *testing.T) {
	s, db := setupStore(t)
	w := &WeeklyEntry{
		Title:      "Movie Night",
		Start:      NewClock(20, 0, 0),
		End:        NewClock(23, 0, 0),
		DayOfWeek:  "friday",
		Section:    "Movies",
		StrictTime: true,
		TimeShift:  "5",
		OverlapMax: "15",
		Xtra:       "genre:horror",
	}
	require.NoError(t, s.AddWeeklyEntry(w))
	assert.NotZero(t, w.ID)

	var strict string
	require.NoError(t, db.Get(&strict, "SELECT strictTime FROM schedule WHERE id = ?", w.ID))
	assert.Equal(t, "true", strict)

	got, err := s.ListWeeklySchedule()
	require.NoError(t, err)
	require.Len(t, got, 1)
	if diff := cmp.Diff(*w, got[0]); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 15*time.Minute, got[0].Overlap())
	assert.Equal(t, 5*time.Minute, got[0].Shift())
	assert.Equal(t, 3*time.Hour, got[0].Window().Length())
}

func TestWeeklyEntry_LegacyValues(t *testing.T) {
	s, db := setupStore(t)
	_, err := db.Exec(`INSERT INTO schedule (title, startTime, dayOfWeek, section, strictTime, overlapMax)
		VALUES ('Old', '06:00 PM', 'weekdays', 'TV Shows', 'True', 'n/a')`)
	require.NoError(t, err)

	got, err := s.ListWeeklySchedule()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "18:00:00", got[0].Start.String())
	assert.True(t, got[0].StrictTime)
	assert.Zero(t, got[0].Overlap())
	assert.True(t, got[0].AirsOn(time.Monday))
	assert.False(t, got[0].AirsOn(time.Sunday))
}

func TestClearWeeklySchedule(t *testing.T) {
	s, _ := setupStore(t)
	addWeekly(t, s, "Daily", NewClock(6, 0, 0), DayEveryday)

	require.NoError(t, s.ClearWeeklySchedule())
	got, err := s.ListWeeklySchedule()
	require.NoError(t, err)
	assert.Empty(t, got)
}
