package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/steady-app/steady/internal/domain"
)

// ─── Point Ledger ───────────────────────────────────────────────────────────

// applyAward inserts one ledger row and folds it into the cached user
// aggregates, inside the caller's transaction. INSERT OR IGNORE on the
// (user, source) uniqueness makes replays no-ops: if the row already
// exists, the aggregates are left untouched too.
func applyAward(tx *sql.Tx, e domain.PointLedgerEntry) error {
	if e.PointsMilli <= 0 {
		return nil
	}
	res, err := tx.Exec(
		`INSERT OR IGNORE INTO point_ledger (user_id, goal_id, week_key, points_milli, reason, source_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.GoalID, e.WeekKey, e.PointsMilli, string(e.Reason),
		e.SourceID, e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert ledger: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil // already awarded for this source
	}

	// Fold into the cached projection, resetting the weekly bucket when the
	// observed week key changes.
	var weekKey string
	var weekMilli, lifetimeMilli int64
	err = tx.QueryRow(
		`SELECT points_week_key, points_week_milli, points_lifetime_milli
		 FROM user_points WHERE user_id = ?`, e.UserID,
	).Scan(&weekKey, &weekMilli, &lifetimeMilli)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("read aggregates: %w", err)
	}
	// Week keys sort lexicographically. A newer week rolls the bucket
	// over; an entry for an older week (backfill) touches lifetime only.
	switch {
	case e.WeekKey > weekKey:
		weekKey = e.WeekKey
		weekMilli = e.PointsMilli
	case e.WeekKey == weekKey:
		weekMilli += e.PointsMilli
	}
	lifetimeMilli += e.PointsMilli

	_, err = tx.Exec(
		`INSERT INTO user_points (user_id, points_week_key, points_week_milli, points_lifetime_milli)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   points_week_key = excluded.points_week_key,
		   points_week_milli = excluded.points_week_milli,
		   points_lifetime_milli = excluded.points_lifetime_milli`,
		e.UserID, weekKey, weekMilli, lifetimeMilli,
	)
	if err != nil {
		return fmt.Errorf("update aggregates: %w", err)
	}
	return nil
}

// WeekEarnedMilli sums a user's ledger entries for one week, the monotonic
// input to the ceiling clamp.
func (d *DB) WeekEarnedMilli(userID, weekKey string) (int64, error) {
	var sum sql.NullInt64
	err := d.db.QueryRow(
		`SELECT SUM(points_milli) FROM point_ledger WHERE user_id = ? AND week_key = ?`,
		userID, weekKey,
	).Scan(&sum)
	if err != nil {
		return 0, err
	}
	return sum.Int64, nil
}

// GetAggregates returns the cached point projection for a user.
func (d *DB) GetAggregates(userID string) (domain.PointAggregates, error) {
	agg := domain.PointAggregates{UserID: userID}
	err := d.db.QueryRow(
		`SELECT points_week_key, points_week_milli, points_lifetime_milli
		 FROM user_points WHERE user_id = ?`, userID,
	).Scan(&agg.PointsWeekKey, &agg.PointsWeekMilli, &agg.PointsLifetimeMilli)
	if err == sql.ErrNoRows {
		return agg, nil
	}
	return agg, err
}

// LedgerEntries returns a user's recent ledger rows, newest first.
func (d *DB) LedgerEntries(userID string, limit int) ([]domain.PointLedgerEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, goal_id, week_key, points_milli, reason, source_id, created_at
		 FROM point_ledger WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PointLedgerEntry
	for rows.Next() {
		var e domain.PointLedgerEntry
		var reason string
		var created int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.GoalID, &e.WeekKey,
			&e.PointsMilli, &reason, &e.SourceID, &created); err != nil {
			return nil, err
		}
		e.Reason = domain.PointReason(reason)
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RebuildAggregates recomputes a user's cached projection by replaying the
// ledger; the cache is never a source of truth. currentWeekKey decides
// which bucket counts as "this week".
func (d *DB) RebuildAggregates(userID, currentWeekKey string) (domain.PointAggregates, error) {
	agg := domain.PointAggregates{UserID: userID, PointsWeekKey: currentWeekKey}
	err := d.inTx(func(tx *sql.Tx) error {
		var lifetime, week sql.NullInt64
		if err := tx.QueryRow(
			`SELECT SUM(points_milli) FROM point_ledger WHERE user_id = ?`, userID,
		).Scan(&lifetime); err != nil {
			return err
		}
		if err := tx.QueryRow(
			`SELECT SUM(points_milli) FROM point_ledger WHERE user_id = ? AND week_key = ?`,
			userID, currentWeekKey,
		).Scan(&week); err != nil {
			return err
		}
		agg.PointsLifetimeMilli = lifetime.Int64
		agg.PointsWeekMilli = week.Int64

		_, err := tx.Exec(
			`INSERT INTO user_points (user_id, points_week_key, points_week_milli, points_lifetime_milli)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(user_id) DO UPDATE SET
			   points_week_key = excluded.points_week_key,
			   points_week_milli = excluded.points_week_milli,
			   points_lifetime_milli = excluded.points_lifetime_milli`,
			userID, currentWeekKey, agg.PointsWeekMilli, agg.PointsLifetimeMilli,
		)
		return err
	})
	return agg, err
}
