// Package timekey converts instants into calendar-local keys.
// A day key is "YYYY-MM-DD", a week key is the ISO-8601 "YYYY-Www"
// (Monday-start). Every other engine depends on these for
// timezone-correct boundaries, so all arithmetic here formats the
// instant in the user's timezone first, never naive UTC subtraction.
package timekey

import (
	"fmt"
	"time"

	"github.com/steady-app/steady/internal/domain"
)

// DayKeyLayout is the time layout for day keys.
const DayKeyLayout = "2006-01-02"

// Zone resolves an IANA timezone name.
func Zone(tz string) (*time.Location, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTimezone, tz)
	}
	return loc, nil
}

// DayKey returns the calendar date of t in the given timezone.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// WeekKey returns the ISO week identifier "YYYY-Www" of t in the given
// timezone. The ISO year can differ from the calendar year near January 1.
func WeekKey(t time.Time, loc *time.Location) string {
	year, week := t.In(loc).ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekStart returns the Monday 00:00 local-time boundary of the ISO week
// containing t. The local ISO weekday (1=Monday … 7=Sunday) decides how many
// days to step back; AddDate keeps the wall clock stable across DST shifts.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	weekday := int(local.Weekday())
	if weekday == 0 { // time.Sunday is 0, ISO wants 7
		weekday = 7
	}
	monday := local.AddDate(0, 0, -(weekday - 1))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, loc)
}

// WeekEnd returns the start of the last day (Sunday 00:00 local) of the ISO
// week containing t.
func WeekEnd(t time.Time, loc *time.Location) time.Time {
	return WeekStart(t, loc).AddDate(0, 0, 6)
}

// ─── Day-key arithmetic ─────────────────────────────────────────────────────
// Day keys are timezone-free once derived, so walking between them is plain
// calendar math in UTC.

// ParseDayKey parses a "YYYY-MM-DD" key. The returned time is midnight UTC.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.Parse(DayKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDateKey, key)
	}
	return t, nil
}

// PrevDay returns the day key immediately before key. A malformed key is
// returned unchanged; callers validate first.
func PrevDay(key string) string {
	t, err := ParseDayKey(key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, -1).Format(DayKeyLayout)
}

// AddDays returns the day key n days after key (n may be negative).
func AddDays(key string, n int) string {
	t, err := ParseDayKey(key)
	if err != nil {
		return key
	}
	return t.AddDate(0, 0, n).Format(DayKeyLayout)
}

// DaysBetween returns the whole calendar days from a to b (b-a).
// Negative when b precedes a.
func DaysBetween(a, b string) int {
	ta, errA := ParseDayKey(a)
	tb, errB := ParseDayKey(b)
	if errA != nil || errB != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// WeekDayKeys returns the seven day keys of the ISO week containing t in the
// given timezone, Monday first.
func WeekDayKeys(t time.Time, loc *time.Location) []string {
	start := WeekStart(t, loc)
	keys := make([]string, 7)
	for i := range keys {
		keys[i] = start.AddDate(0, 0, i).Format(DayKeyLayout)
	}
	return keys
}
