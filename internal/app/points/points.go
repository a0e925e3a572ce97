// Package points allocates a fixed weekly point ceiling across a user's
// goals. The design goals: at most Ceiling points per user per week, shares
// distributed by expected effort with diminishing returns, and finishing a
// goal worth disproportionately more than equivalent mid-range progress.
// Everything here is pure; the caller persists the resulting ledger delta.
package points

import (
	"math"
	"time"

	"github.com/steady-app/steady/internal/domain"
)

// Tuning constants. CeilingMilli is the hard per-user weekly cap on the sum
// of ledger entries, in milli-points.
const (
	Ceiling      = 1000
	CeilingMilli = Ceiling * 1000

	// Alpha blends linear progress against the finish-weighted curve;
	// Gamma is the finish-weighting exponent.
	Alpha = 0.7
	Gamma = 1.8

	// MaxDailyTargetForWeight caps how much weekly weight a single
	// high-frequency goal can claim.
	MaxDailyTargetForWeight = 10

	// Streak bonus: +2% per full week of current streak, capped at +10%.
	streakBonusPerWeek = 0.02
	streakBonusCap     = 0.10
)

// ─── Effort weighting ───────────────────────────────────────────────────────

// ExpectedWeeklyUnits returns how many completion units a goal expects in a
// week: the weekly target for WEEKLY goals, 7×min(dailyTarget, cap) for
// DAILY goals.
func ExpectedWeeklyUnits(g domain.Goal) float64 {
	if g.Cadence == domain.CadenceWeekly {
		return float64(g.WeeklyTarget)
	}
	target := g.DailyTarget
	if target > MaxDailyTargetForWeight {
		target = MaxDailyTargetForWeight
	}
	return float64(7 * target)
}

// Weight returns a goal's effort weight, ln(1+expectedUnits). Logarithmic so
// heavier goals earn a larger share with diminishing marginal effect.
func Weight(g domain.Goal) float64 {
	return math.Log1p(ExpectedWeeklyUnits(g))
}

// ActiveForWeek reports whether a goal participates in a week's share split.
// A goal counts if it is active and either existed by the week's end or
// already has a check-in inside the week: historical backfill can earn for
// later-deactivated weeks, while a goal created mid-week cannot retroactively
// dilute shares for days it didn't exist.
func ActiveForWeek(g domain.Goal, weekEnd time.Time, hasCheckInThisWeek bool) bool {
	if !g.Active {
		return false
	}
	return !g.CreatedAt.After(weekEnd) || hasCheckInThisWeek
}

// Share returns goal's slice of the weekly ceiling given the set of goals
// active for the week. Zero when the weight sum is zero or the goal is not
// in the set.
func Share(goal domain.Goal, activeGoals []domain.Goal) float64 {
	var total float64
	inSet := false
	for _, g := range activeGoals {
		total += Weight(g)
		if g.ID == goal.ID {
			inSet = true
		}
	}
	if total == 0 || !inSet {
		return 0
	}
	return Ceiling * Weight(goal) / total
}

// ─── Weekly progress ────────────────────────────────────────────────────────

// WeeklyProgress returns P ∈ [0,1] for a goal over one week. DAILY goals
// average min(dayCount/dailyTarget, 1) across the seven calendar days given
// by weekDayKeys; WEEKLY goals use min(checkIns/weeklyTarget, 1).
func WeeklyProgress(g domain.Goal, countsByDay map[string]int, weekDayKeys []string) float64 {
	if g.Cadence == domain.CadenceWeekly {
		if g.WeeklyTarget <= 0 {
			return 0
		}
		total := 0
		for _, key := range weekDayKeys {
			total += countsByDay[key]
		}
		return math.Min(float64(total)/float64(g.WeeklyTarget), 1)
	}

	if g.DailyTarget <= 0 || len(weekDayKeys) == 0 {
		return 0
	}
	var sum float64
	for _, key := range weekDayKeys {
		sum += math.Min(float64(countsByDay[key])/float64(g.DailyTarget), 1)
	}
	return sum / float64(len(weekDayKeys))
}

// Score applies the blended progress curve
// (1-Alpha)×P + Alpha×P^Gamma: early progress earns a proportional floor,
// while the convex term makes the last increment toward completion worth
// more than the same increment mid-way.
func Score(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p > 1 {
		p = 1
	}
	return (1-Alpha)*p + Alpha*math.Pow(p, Gamma)
}

// StreakMultiplier returns 1 + min(10%, 2% per full week of streak).
func StreakMultiplier(streakDays int) float64 {
	if streakDays < 0 {
		streakDays = 0
	}
	bonus := streakBonusPerWeek * float64(streakDays/7)
	if bonus > streakBonusCap {
		bonus = streakBonusCap
	}
	return 1 + bonus
}

// ─── Award computation ──────────────────────────────────────────────────────

// Award is the ledger delta for one point-awarding event.
type Award struct {
	PointsMilli  int64   `json:"points_milli"`
	BonusApplied float64 `json:"bonus_applied"` // streak multiplier actually used
}

// Compute turns a progress transition into a clamped milli-point award.
// share is the goal's slice of the ceiling, pBefore/pAfter exclude/include
// the triggering check-in, and earnedThisWeekMilli is the user's existing
// ledger sum for the week. The clamp keeps the weekly sum at or under the
// ceiling regardless of goal count or event ordering.
func Compute(share, pBefore, pAfter float64, streakDays int, earnedThisWeekMilli int64) Award {
	mult := StreakMultiplier(streakDays)
	raw := share * (Score(pAfter) - Score(pBefore)) * mult

	milli := int64(math.Round(raw * 1000))
	if milli < 0 {
		milli = 0
	}
	remaining := CeilingMilli - earnedThisWeekMilli
	if remaining < 0 {
		remaining = 0
	}
	if milli > remaining {
		milli = remaining
	}
	return Award{PointsMilli: milli, BonusApplied: mult}
}
