package timekey_test

import (
	"testing"
	"time"

	"github.com/steady-app/steady/internal/app/timekey"
)

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := timekey.Zone(name)
	if err != nil {
		t.Fatalf("zone %s: %v", name, err)
	}
	return loc
}

func TestDayKey_TimezoneBoundary(t *testing.T) {
	// 23:30 UTC on Mar 1 is already Mar 2 in Tokyo but still Mar 1 in New York.
	instant := time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC)

	tokyo := mustZone(t, "Asia/Tokyo")
	ny := mustZone(t, "America/New_York")

	if got := timekey.DayKey(instant, tokyo); got != "2025-03-02" {
		t.Errorf("tokyo day key = %s, want 2025-03-02", got)
	}
	if got := timekey.DayKey(instant, ny); got != "2025-03-01" {
		t.Errorf("new york day key = %s, want 2025-03-01", got)
	}
}

func TestWeekKey_ISOYearBoundary(t *testing.T) {
	// Dec 30 2024 is a Monday and belongs to ISO week 2025-W01.
	instant := time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC)
	if got := timekey.WeekKey(instant, time.UTC); got != "2025-W01" {
		t.Errorf("week key = %s, want 2025-W01", got)
	}
}

func TestWeekStart_SundayBelongsToPriorMonday(t *testing.T) {
	loc := mustZone(t, "Europe/Berlin")
	// Sunday July 6 2025: ISO week started Monday June 30.
	sunday := time.Date(2025, 7, 6, 15, 0, 0, 0, loc)

	start := timekey.WeekStart(sunday, loc)
	if start.Weekday() != time.Monday {
		t.Errorf("week start weekday = %v, want Monday", start.Weekday())
	}
	if got := start.Format("2006-01-02 15:04"); got != "2025-06-30 00:00" {
		t.Errorf("week start = %s, want 2025-06-30 00:00", got)
	}

	end := timekey.WeekEnd(sunday, loc)
	if got := end.Format("2006-01-02"); got != "2025-07-06" {
		t.Errorf("week end = %s, want 2025-07-06", got)
	}
}

func TestWeekStart_StableAcrossDST(t *testing.T) {
	loc := mustZone(t, "America/New_York")
	// March 9 2025: US spring-forward happens inside this ISO week.
	afterShift := time.Date(2025, 3, 9, 18, 0, 0, 0, loc)

	start := timekey.WeekStart(afterShift, loc)
	if got := start.Format("2006-01-02 15:04"); got != "2025-03-03 00:00" {
		t.Errorf("week start = %s, want 2025-03-03 00:00", got)
	}
}

func TestDayKeyArithmetic(t *testing.T) {
	if got := timekey.PrevDay("2025-03-01"); got != "2025-02-28" {
		t.Errorf("prev day = %s, want 2025-02-28", got)
	}
	if got := timekey.AddDays("2024-02-28", 2); got != "2024-03-01" {
		t.Errorf("leap-year add = %s, want 2024-03-01", got)
	}
	if got := timekey.DaysBetween("2025-01-01", "2025-01-31"); got != 30 {
		t.Errorf("days between = %d, want 30", got)
	}
	if got := timekey.DaysBetween("2025-01-31", "2025-01-01"); got != -30 {
		t.Errorf("reverse days between = %d, want -30", got)
	}
}

func TestWeekDayKeys(t *testing.T) {
	loc := mustZone(t, "UTC")
	keys := timekey.WeekDayKeys(time.Date(2025, 7, 3, 0, 0, 0, 0, loc), loc)
	if len(keys) != 7 {
		t.Fatalf("got %d keys, want 7", len(keys))
	}
	if keys[0] != "2025-06-30" || keys[6] != "2025-07-06" {
		t.Errorf("keys span %s..%s, want 2025-06-30..2025-07-06", keys[0], keys[6])
	}
}

func TestZone_Unknown(t *testing.T) {
	if _, err := timekey.Zone("Mars/Olympus_Mons"); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
