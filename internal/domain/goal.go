// Package domain holds the core types of the Steady consistency engine.
// Goals, check-ins, the point ledger, groups, and challenges: pure data,
// no infrastructure dependency.
package domain

import "time"

// ─── Goal Types ─────────────────────────────────────────────────────────────

// Cadence describes how often a goal expects completions.
type Cadence string

const (
	CadenceDaily  Cadence = "DAILY"
	CadenceWeekly Cadence = "WEEKLY"
)

// Goal is a habit owned by exactly one user, optionally shared with a group.
// A WEEKLY goal always carries a WeeklyTarget ≥ 1; a DAILY goal requires
// DailyTarget completions per calendar day.
type Goal struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	GroupID       string    `json:"group_id,omitempty"`
	Name          string    `json:"name"`
	Cadence       Cadence   `json:"cadence"`
	DailyTarget   int       `json:"daily_target"`            // ≥1, default 1
	WeeklyTarget  int       `json:"weekly_target,omitempty"` // required for WEEKLY
	Active        bool      `json:"active"`
	StreakFreezes int       `json:"streak_freezes"` // forgiveness budget, default 1
	CreatedAt     time.Time `json:"created_at"`
}

// WeeklyUnits returns the goal's weekly completion quota: the weekly target
// for WEEKLY goals, dailyTarget×7 for DAILY goals.
func (g Goal) WeeklyUnits() int {
	if g.Cadence == CadenceWeekly {
		return g.WeeklyTarget
	}
	return g.DailyTarget * 7
}

// Validate checks structural invariants at creation time.
func (g Goal) Validate() error {
	switch g.Cadence {
	case CadenceDaily:
		if g.DailyTarget < 1 {
			return ErrInvalidTarget
		}
	case CadenceWeekly:
		if g.WeeklyTarget < 1 {
			return ErrInvalidTarget
		}
	default:
		return ErrInvalidCadence
	}
	if g.StreakFreezes < 0 {
		return ErrInvalidTarget
	}
	return nil
}

// ─── Check-in Types ─────────────────────────────────────────────────────────

// CheckIn is one completion event. LocalDateKey and WeekKey are derived from
// the timestamp in the user's timezone at creation and never recomputed.
type CheckIn struct {
	ID           string    `json:"id"`
	GoalID       string    `json:"goal_id"`
	UserID       string    `json:"user_id"`
	Timestamp    time.Time `json:"timestamp"`
	LocalDateKey string    `json:"local_date_key"` // "YYYY-MM-DD"
	WeekKey      string    `json:"week_key"`       // "YYYY-Www"
	IsPartial    bool      `json:"is_partial"`     // only meaningful when dailyTarget == 1
}
