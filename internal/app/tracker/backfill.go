package tracker

import (
	"time"

	"github.com/google/uuid"

	"github.com/steady-app/steady/internal/app/points"
	"github.com/steady-app/steady/internal/app/timekey"
	"github.com/steady-app/steady/internal/domain"
)

// ─── Historical backfill ────────────────────────────────────────────────────
// A backfill replaces a day's state rather than appending to it: the diff is
// computed as a pure function outside the transaction, then applied
// atomically inside one.

// ReconcileDay computes what must change to bring a day from its existing
// check-ins to a desired count. Shrinking removes the newest check-ins
// first; partials are treated as occupying slots like any other row.
func ReconcileDay(existing []domain.CheckIn, desired int) (deleteIDs []string, missing int) {
	if desired < 0 {
		desired = 0
	}
	if len(existing) > desired {
		// Rows arrive oldest-first; delete from the tail.
		for _, ci := range existing[desired:] {
			deleteIDs = append(deleteIDs, ci.ID)
		}
		return deleteIDs, 0
	}
	return nil, desired - len(existing)
}

// BackfillResult reports what a historical edit changed.
type BackfillResult struct {
	DateKey  string       `json:"date_key"`
	Inserted int          `json:"inserted"`
	Deleted  int          `json:"deleted"`
	Award    points.Award `json:"award"`
}

// SetDayCount sets a goal's completion count for an arbitrary past day.
// Increases can earn points for that day's week (backfill-friendly);
// decreases never claw anything back from the ledger.
func (s *Service) SetDayCount(userID, goalID, dateKey string, desired int, tz string) (*BackfillResult, error) {
	goal, err := s.ownedGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	loc, err := timekey.Zone(tz)
	if err != nil {
		return nil, err
	}
	day, err := timekey.ParseDayKey(dateKey)
	if err != nil {
		return nil, err
	}

	now := s.now()
	todayKey := timekey.DayKey(now, loc)
	if dateKey > todayKey {
		return nil, domain.ErrFutureDate
	}
	maxCount := goal.DailyTarget
	if goal.Cadence == domain.CadenceWeekly {
		maxCount = goal.WeeklyTarget
	}
	if desired < 0 || desired > maxCount {
		return nil, domain.ErrCountOutOfRange
	}

	existing, err := s.db.CheckInsForDay(goalID, dateKey)
	if err != nil {
		return nil, err
	}
	deleteIDs, missing := ReconcileDay(existing, desired)

	// Timestamps land at local noon so the derived keys can never straddle
	// a day boundary.
	at := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, loc)
	weekKey := timekey.WeekKey(at, loc)

	inserts := make([]domain.CheckIn, 0, missing)
	for i := 0; i < missing; i++ {
		inserts = append(inserts, domain.CheckIn{
			ID:           uuid.NewString(),
			GoalID:       goalID,
			UserID:       userID,
			Timestamp:    at.Add(time.Duration(i) * time.Second),
			LocalDateKey: dateKey,
			WeekKey:      weekKey,
		})
	}

	var entry *domain.PointLedgerEntry
	var award points.Award
	if missing > 0 {
		award, err = s.computeAward(goal, at, loc, dateKey, weekKey, missing)
		if err != nil {
			return nil, err
		}
		if award.PointsMilli > 0 {
			entry = &domain.PointLedgerEntry{
				UserID:      userID,
				GoalID:      goalID,
				WeekKey:     weekKey,
				PointsMilli: award.PointsMilli,
				Reason:      domain.ReasonBackfill,
				SourceID:    inserts[0].ID,
				CreatedAt:   now,
			}
		}
	}

	if err := s.db.ApplyBackfill(inserts, deleteIDs, entry); err != nil {
		return nil, err
	}
	return &BackfillResult{
		DateKey:  dateKey,
		Inserted: len(inserts),
		Deleted:  len(deleteIDs),
		Award:    award,
	}, nil
}
