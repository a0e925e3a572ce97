package tracker

import (
	"github.com/google/uuid"

	"github.com/steady-app/steady/internal/app/streak"
	"github.com/steady-app/steady/internal/app/timekey"
	"github.com/steady-app/steady/internal/domain"
)

// ─── Goal lifecycle ─────────────────────────────────────────────────────────

// CreateGoal validates and persists a new goal owned by userID.
func (s *Service) CreateGoal(userID string, g domain.Goal) (*domain.Goal, error) {
	g.ID = uuid.NewString()
	g.UserID = userID
	g.Active = true
	if g.DailyTarget == 0 {
		g.DailyTarget = 1
	}
	if g.StreakFreezes == 0 {
		g.StreakFreezes = s.freezes
	}
	g.CreatedAt = s.now()

	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := s.db.InsertGoal(g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Goals lists a user's goals.
func (s *Service) Goals(userID string, activeOnly bool) ([]domain.Goal, error) {
	return s.db.ListUserGoals(userID, activeOnly)
}

// ArchiveGoal soft-deletes: the goal stops counting but its history stays.
func (s *Service) ArchiveGoal(userID, goalID string) error {
	goal, err := s.ownedGoal(userID, goalID)
	if err != nil {
		return err
	}
	return s.db.ArchiveGoal(goal.ID)
}

// DeleteGoal hard-deletes the goal and cascades its check-ins.
func (s *Service) DeleteGoal(userID, goalID string) error {
	goal, err := s.ownedGoal(userID, goalID)
	if err != nil {
		return err
	}
	return s.db.DeleteGoal(goal.ID)
}

// ─── Streak summary ─────────────────────────────────────────────────────────

// StreakSummary is the presentation-ready bundle of streak metrics.
type StreakSummary struct {
	Current           int                   `json:"current_streak"`
	Best              int                   `json:"best_streak"`
	Graceful          streak.GracefulResult `json:"graceful"`
	ConsistencyPct    int                   `json:"consistency_pct"`
	RecentCompletions int                   `json:"recent_completions"`
	WindowDays        int                   `json:"window_days"`
	Tone              streak.Tone           `json:"tone"`
	Message           string                `json:"message"`
}

// Streaks computes all streak and consistency metrics for a goal as of
// today in the user's timezone.
func (s *Service) Streaks(userID, goalID, tz string) (*StreakSummary, error) {
	goal, err := s.ownedGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	loc, err := timekey.Zone(tz)
	if err != nil {
		return nil, err
	}

	history, err := s.db.CountsByDay(goalID)
	if err != nil {
		return nil, err
	}

	todayKey := timekey.DayKey(s.now(), loc)
	createdKey := timekey.DayKey(goal.CreatedAt, loc)
	target := goal.DailyTarget
	if goal.Cadence == domain.CadenceWeekly {
		target = 1
	}

	sum := &StreakSummary{
		Current:           streak.Current(history, target, todayKey),
		Best:              streak.Best(history, target),
		Graceful:          streak.Graceful(history, target, todayKey, goal.StreakFreezes),
		ConsistencyPct:    streak.Consistency(history, target, todayKey, createdKey, s.window),
		RecentCompletions: streak.RecentCompletions(history, target, todayKey, createdKey, s.window),
		WindowDays:        s.window,
	}
	sum.Tone, sum.Message = streak.Encouragement(sum.ConsistencyPct, sum.RecentCompletions, s.window)
	return sum, nil
}

// Aggregates returns the user's cached point totals.
func (s *Service) Aggregates(userID string) (domain.PointAggregates, error) {
	return s.db.GetAggregates(userID)
}

// RebuildAggregates replays the ledger into the cached totals, scoped to the
// current week in the user's timezone.
func (s *Service) RebuildAggregates(userID, tz string) (domain.PointAggregates, error) {
	loc, err := timekey.Zone(tz)
	if err != nil {
		return domain.PointAggregates{}, err
	}
	return s.db.RebuildAggregates(userID, timekey.WeekKey(s.now(), loc))
}

// Ledger returns recent point ledger rows for display.
func (s *Service) Ledger(userID string, limit int) ([]domain.PointLedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.db.LedgerEntries(userID, limit)
}
