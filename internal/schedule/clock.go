package schedule

import (
	"fmt"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Clock is a time of day as an offset from midnight, in [0, 24h).
type Clock time.Duration

// Layouts accepted when reading stored times. Rows written by this package
// always use the first.
var clockLayouts = []string{"15:04:05", "15:04", "3:04:05 PM", "3:04 PM", "3:04:05PM", "3:04PM"}

// ParseClock reads a time of day.
func ParseClock(s string) (Clock, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClock(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// NewClock builds a Clock, normalizing out-of-range values modulo one day.
func NewClock(hour, minute, second int) Clock {
	d := time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second
	return Clock(0).Add(d)
}

// ClockOf returns the wall-clock time of day of t in t's location.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute(), t.Second())
}

// Add advances c by d, wrapping past midnight.
func (c Clock) Add(d time.Duration) Clock {
	v := (time.Duration(c) + d) % day
	if v < 0 {
		v += day
	}
	return Clock(v)
}

// Hour returns the hour of day, 0-23.
func (c Clock) Hour() int { return int(time.Duration(c) / time.Hour) }

// String formats c as HH:MM:SS, so lexical order equals time order.
func (c Clock) String() string {
	d := time.Duration(c)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Until returns how long after c the clock reaches next, crossing midnight
// when next is earlier in the day.
func (c Clock) Until(next Clock) time.Duration {
	d := time.Duration(next) - time.Duration(c)
	if d < 0 {
		d += day
	}
	return d
}

// On returns the instant on the calendar day of date at time c.
func (c Clock) On(date time.Time) time.Time {
	y, m, dd := date.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, date.Location()).Add(time.Duration(c))
}

// Window is a half-open [Start, End) time-of-day range. A window whose end
// is before its start crosses midnight.
type Window struct {
	Start, End Clock
}

// Contains reports whether c falls in the window. Empty windows contain
// nothing.
func (w Window) Contains(c Clock) bool {
	switch {
	case w.Start < w.End:
		return c >= w.Start && c < w.End
	case w.Start > w.End:
		return c >= w.Start || c < w.End
	}
	return false
}

// Length returns the duration of the window.
func (w Window) Length() time.Duration {
	return w.Start.Until(w.End)
}
