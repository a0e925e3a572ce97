// Package tracker orchestrates check-ins: validation, timezone-local key
// derivation, point computation, and the atomic persistence unit. The
// engines it calls (timekey, streak, points) are pure; everything stateful
// goes through one sqlite transaction per user action.
package tracker

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/steady-app/steady/internal/app/points"
	"github.com/steady-app/steady/internal/app/streak"
	"github.com/steady-app/steady/internal/app/timekey"
	"github.com/steady-app/steady/internal/domain"
	"github.com/steady-app/steady/internal/infra/sqlite"
)

// DefaultConsistencyWindow is the trailing window for consistency metrics.
const DefaultConsistencyWindow = 30

// DefaultStreakFreezes is the per-goal freeze allowance when the user has not
// configured one.
const DefaultStreakFreezes = 1

// Service wires the pure engines to storage.
type Service struct {
	db      *sqlite.DB
	window  int
	freezes int

	// Injectable clock for tests.
	now func() time.Time
}

// New creates a tracker service.
func New(db *sqlite.DB) *Service {
	return &Service{db: db, window: DefaultConsistencyWindow, freezes: DefaultStreakFreezes, now: time.Now}
}

// SetClock overrides the clock. Test hook.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetWindow overrides the consistency window length.
func (s *Service) SetWindow(days int) {
	if days > 0 {
		s.window = days
	}
}

// SetDefaultFreezes overrides the freeze allowance new goals inherit.
func (s *Service) SetDefaultFreezes(n int) {
	if n >= 0 {
		s.freezes = n
	}
}

// ─── Check-in ───────────────────────────────────────────────────────────────

// CheckInResult is what the caller renders after a check-in.
type CheckInResult struct {
	CheckIn     domain.CheckIn `json:"check_in"`
	Award       points.Award   `json:"award"`
	DayCount    int            `json:"day_count"`
	DayComplete bool           `json:"day_complete"`
}

// CheckIn records one completion event for a goal, awarding points in the
// same atomic unit. Partial check-ins (single-target goals only) record the
// event but award nothing until upgraded.
func (s *Service) CheckIn(userID, goalID, tz string, isPartial bool) (*CheckInResult, error) {
	goal, err := s.ownedActiveGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	if isPartial && goal.DailyTarget != 1 {
		return nil, domain.ErrPartialMultiTarget
	}
	loc, err := timekey.Zone(tz)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dayKey := timekey.DayKey(now, loc)
	weekKey := timekey.WeekKey(now, loc)

	// Conflict: a DAILY goal's day is capped at its target (partials
	// occupy a slot too, so a lingering partial blocks a duplicate).
	if goal.Cadence == domain.CadenceDaily {
		count, err := s.db.CountForDay(goalID, dayKey)
		if err != nil {
			return nil, fmt.Errorf("count day: %w", err)
		}
		if count >= goal.DailyTarget {
			return nil, domain.ErrDailyTargetReached
		}
	}

	ci := domain.CheckIn{
		ID:           uuid.NewString(),
		GoalID:       goalID,
		UserID:       userID,
		Timestamp:    now,
		LocalDateKey: dayKey,
		WeekKey:      weekKey,
		IsPartial:    isPartial,
	}

	var award points.Award
	var entry *domain.PointLedgerEntry
	if !isPartial {
		award, err = s.computeAward(goal, now, loc, dayKey, weekKey, 1)
		if err != nil {
			return nil, err
		}
		if award.PointsMilli > 0 {
			entry = &domain.PointLedgerEntry{
				UserID:      userID,
				GoalID:      goalID,
				WeekKey:     weekKey,
				PointsMilli: award.PointsMilli,
				Reason:      domain.ReasonCheckIn,
				SourceID:    ci.ID,
				CreatedAt:   now,
			}
		}
	}

	if err := s.db.RecordCheckIn(ci, entry); err != nil {
		return nil, err
	}
	return s.dayState(goal, ci, award, dayKey)
}

// Undo removes today's most recent check-in. Points already in the ledger
// stay there; the ledger only grows.
func (s *Service) Undo(userID, goalID, tz string) (*domain.CheckIn, error) {
	goal, err := s.ownedGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	loc, err := timekey.Zone(tz)
	if err != nil {
		return nil, err
	}
	return s.db.UndoLastCheckIn(goal.ID, timekey.DayKey(s.now(), loc))
}

// UpgradePartial converts today's partial check-in to a full completion and
// awards the points the full completion is worth. Only valid on
// single-target goals, and only once per check-in.
func (s *Service) UpgradePartial(userID, goalID, tz string) (*CheckInResult, error) {
	goal, err := s.ownedActiveGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.DailyTarget != 1 {
		return nil, domain.ErrPartialMultiTarget
	}
	loc, err := timekey.Zone(tz)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dayKey := timekey.DayKey(now, loc)
	weekKey := timekey.WeekKey(now, loc)

	existing, err := s.db.CheckInsForDay(goalID, dayKey)
	if err != nil {
		return nil, err
	}
	var partial *domain.CheckIn
	for i := range existing {
		if existing[i].IsPartial {
			partial = &existing[i]
			break
		}
	}
	if partial == nil {
		return nil, domain.ErrAlreadyFull
	}

	award, err := s.computeAward(goal, now, loc, dayKey, weekKey, 1)
	if err != nil {
		return nil, err
	}
	var entry *domain.PointLedgerEntry
	if award.PointsMilli > 0 {
		entry = &domain.PointLedgerEntry{
			UserID:      userID,
			GoalID:      goalID,
			WeekKey:     weekKey,
			PointsMilli: award.PointsMilli,
			Reason:      domain.ReasonCheckIn,
			SourceID:    partial.ID,
			CreatedAt:   now,
		}
	}
	if err := s.db.UpgradePartial(partial.ID, entry); err != nil {
		return nil, err
	}

	partial.IsPartial = false
	return s.dayState(goal, *partial, award, dayKey)
}

// dayState assembles the post-write result. DayCount reports occupied slots
// (partials included), but only completed check-ins can finish a day.
func (s *Service) dayState(goal *domain.Goal, ci domain.CheckIn, award points.Award, dayKey string) (*CheckInResult, error) {
	count, err := s.db.CountForDay(goal.ID, dayKey)
	if err != nil {
		return nil, err
	}
	full, err := s.db.FullCountForDay(goal.ID, dayKey)
	if err != nil {
		return nil, err
	}
	return &CheckInResult{
		CheckIn:     ci,
		Award:       award,
		DayCount:    count,
		DayComplete: goal.Cadence == domain.CadenceDaily && full >= goal.DailyTarget,
	}, nil
}

// ─── Award plumbing ─────────────────────────────────────────────────────────

// computeAward prices the transition caused by adding delta completions to
// the given day, using the week containing dayKey. Week membership, goal
// shares, and progress are all computed in the user's timezone.
func (s *Service) computeAward(goal *domain.Goal, at time.Time, loc *time.Location, dayKey, weekKey string, delta int) (points.Award, error) {
	weekEnd := timekey.WeekEnd(at, loc)
	active, err := s.goalsActiveForWeek(goal.UserID, weekKey, weekEnd)
	if err != nil {
		return points.Award{}, err
	}
	share := points.Share(*goal, active)

	weekDays := timekey.WeekDayKeys(at, loc)
	counts, err := s.db.CountsByDayInWeek(goal.ID, weekKey)
	if err != nil {
		return points.Award{}, err
	}

	pBefore := points.WeeklyProgress(*goal, counts, weekDays)
	after := make(map[string]int, len(counts)+1)
	for k, v := range counts {
		after[k] = v
	}
	after[dayKey] += delta
	pAfter := points.WeeklyProgress(*goal, after, weekDays)

	history, err := s.db.CountsByDay(goal.ID)
	if err != nil {
		return points.Award{}, err
	}
	target := goal.DailyTarget
	if goal.Cadence == domain.CadenceWeekly {
		target = 1
	}
	streakDays := streak.Current(history, target, dayKey)

	earned, err := s.db.WeekEarnedMilli(goal.UserID, weekKey)
	if err != nil {
		return points.Award{}, err
	}
	return points.Compute(share, pBefore, pAfter, streakDays, earned), nil
}

// goalsActiveForWeek filters the user's goals to those participating in the
// week's share split.
func (s *Service) goalsActiveForWeek(userID, weekKey string, weekEnd time.Time) ([]domain.Goal, error) {
	goals, err := s.db.ListUserGoals(userID, true)
	if err != nil {
		return nil, err
	}
	var active []domain.Goal
	for _, g := range goals {
		hasCheckIn := false
		if g.CreatedAt.After(weekEnd) {
			hasCheckIn, err = s.db.HasCheckInInWeek(g.ID, weekKey)
			if err != nil {
				return nil, err
			}
		}
		if points.ActiveForWeek(g, weekEnd, hasCheckIn) {
			active = append(active, g)
		}
	}
	return active, nil
}

// ─── Goal ownership guards ──────────────────────────────────────────────────

func (s *Service) ownedGoal(userID, goalID string) (*domain.Goal, error) {
	goal, err := s.db.GetGoal(goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domain.ErrNotGoalOwner
	}
	return goal, nil
}

func (s *Service) ownedActiveGoal(userID, goalID string) (*domain.Goal, error) {
	goal, err := s.ownedGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	if !goal.Active {
		return nil, domain.ErrGoalInactive
	}
	return goal, nil
}
