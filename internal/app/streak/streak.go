// Package streak derives streak and consistency metrics from a goal's
// check-in history. Every function is pure: input is a day-key → count map
// plus the goal's daily target, output is a number. Day boundaries are the
// caller's problem; keys are produced by the timekey package in the user's
// timezone, so "yesterday" here is plain calendar arithmetic.
package streak

import (
	"math"
	"sort"

	"github.com/steady-app/steady/internal/app/timekey"
)

// maxWalk bounds the graceful backward walk so a sparse multi-year history
// cannot make it scan forever.
const maxWalk = 365

// History maps day keys to check-in counts. A day qualifies iff its count
// reaches the daily target; a partial day (0 < count < target) never does.
type History map[string]int

// qualifies reports whether a day meets the target.
func (h History) qualifies(key string, target int) bool {
	return h[key] >= target
}

// ─── Strict and best streaks ────────────────────────────────────────────────

// Current returns the strict current streak ending at todayKey. Today is
// included only if it already qualifies; an unfinished today does not break
// the run, but a missed yesterday does.
func Current(h History, target int, todayKey string) int {
	day := todayKey
	if !h.qualifies(day, target) {
		day = timekey.PrevDay(day)
	}
	n := 0
	for h.qualifies(day, target) {
		n++
		day = timekey.PrevDay(day)
	}
	return n
}

// Best returns the longest run of calendar-consecutive qualifying days
// anywhere in the history.
func Best(h History, target int) int {
	var days []string
	for key, count := range h {
		if count >= target {
			days = append(days, key)
		}
	}
	if len(days) == 0 {
		return 0
	}
	sort.Strings(days)

	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if timekey.DaysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// ─── Graceful streak ────────────────────────────────────────────────────────

// GracefulResult is the forgiving streak state.
type GracefulResult struct {
	CurrentStreak int  `json:"current_streak"`
	FreezesUsed   int  `json:"freezes_used"`
	AtRisk        bool `json:"at_risk"`
}

// Graceful walks backward from todayKey forgiving up to allowedFreezes
// consecutive missed days. A qualifying day extends the streak and resets
// the miss counter; a forgiven miss consumes a freeze without extending or
// breaking it. The walk ends at the first run of misses longer than the
// budget, or at the safety bound.
//
// A freeze is only charged once a deeper qualifying day bridges the gap:
// misses trailing off the old end of the history are not forgiven, they are
// simply where the streak stops.
//
// AtRisk is set when today has not yet qualified but yesterday did: the
// streak is alive only through forgiveness and the user should be prompted.
func Graceful(h History, target int, todayKey string, allowedFreezes int) GracefulResult {
	var res GracefulResult
	if allowedFreezes < 0 {
		allowedFreezes = 0
	}

	day := todayKey
	pendingMisses := 0
	for res.CurrentStreak+res.FreezesUsed <= maxWalk {
		if h.qualifies(day, target) {
			res.CurrentStreak++
			res.FreezesUsed += pendingMisses
			pendingMisses = 0
		} else {
			pendingMisses++
			if pendingMisses > allowedFreezes {
				break
			}
		}
		day = timekey.PrevDay(day)
	}

	res.AtRisk = !h.qualifies(todayKey, target) &&
		h.qualifies(timekey.PrevDay(todayKey), target)
	return res
}

// ─── Consistency window ─────────────────────────────────────────────────────

// windowSize returns how many day keys ending at todayKey are eligible:
// never more than windowDays, never further back than the goal's creation.
func windowSize(todayKey, createdKey string, windowDays int) int {
	age := timekey.DaysBetween(createdKey, todayKey)
	if age < windowDays {
		return age
	}
	return windowDays
}

// Consistency returns round(100 × qualifyingDays / eligibleDays) over a
// trailing window ending at todayKey. A goal created today has no eligible
// days yet and scores a clean 100.
func Consistency(h History, target int, todayKey, createdKey string, windowDays int) int {
	n := windowSize(todayKey, createdKey, windowDays)
	if n <= 0 {
		return 100
	}
	qualifying := 0
	for i := 0; i < n; i++ {
		if h.qualifies(timekey.AddDays(todayKey, -i), target) {
			qualifying++
		}
	}
	return int(math.Round(100 * float64(qualifying) / float64(n)))
}

// RecentCompletions counts qualifying days inside the same trailing window,
// without averaging.
func RecentCompletions(h History, target int, todayKey, createdKey string, windowDays int) int {
	n := windowSize(todayKey, createdKey, windowDays)
	if n <= 0 {
		return 0
	}
	qualifying := 0
	for i := 0; i < n; i++ {
		if h.qualifies(timekey.AddDays(todayKey, -i), target) {
			qualifying++
		}
	}
	return qualifying
}
