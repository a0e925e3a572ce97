package domain

import "time"

// ─── Point Ledger ───────────────────────────────────────────────────────────

// PointReason categorizes why a ledger entry was written.
type PointReason string

const (
	ReasonCheckIn  PointReason = "CHECK_IN"
	ReasonBackfill PointReason = "BACKFILL"
)

// PointLedgerEntry is one append-only, idempotent point award. Points are
// stored as integer milli-points to avoid floating drift. SourceID is the
// triggering check-in id; the (user, source) pair makes awards idempotent.
type PointLedgerEntry struct {
	ID          int64       `json:"id"`
	UserID      string      `json:"user_id"`
	GoalID      string      `json:"goal_id"`
	WeekKey     string      `json:"week_key"`
	PointsMilli int64       `json:"points_milli"`
	Reason      PointReason `json:"reason"`
	SourceID    string      `json:"source_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// PointAggregates is the cached per-user view over the ledger. It is a
// materialized projection, never the source of truth: it must always equal
// the sum of ledger rows and is rebuilt by replaying them.
type PointAggregates struct {
	UserID              string `json:"user_id"`
	PointsWeekKey       string `json:"points_week_key"`
	PointsWeekMilli     int64  `json:"points_week_milli"`
	PointsLifetimeMilli int64  `json:"points_lifetime_milli"`
}
