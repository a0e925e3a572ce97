package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/steady-app/steady/internal/domain"
)

// ─── Check-in Repository ────────────────────────────────────────────────────

// RecordCheckIn inserts a check-in and, when award is non-nil, the matching
// ledger row and aggregate update in one atomic unit, so a check-in can never
// be recorded with its points lost or vice versa.
func (d *DB) RecordCheckIn(ci domain.CheckIn, award *domain.PointLedgerEntry) error {
	return d.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO checkins (id, goal_id, user_id, timestamp, local_date_key, week_key, is_partial)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ci.ID, ci.GoalID, ci.UserID, ci.Timestamp.Unix(),
			ci.LocalDateKey, ci.WeekKey, ci.IsPartial,
		)
		if err != nil {
			return fmt.Errorf("insert checkin: %w", err)
		}
		if award != nil {
			return applyAward(tx, *award)
		}
		return nil
	})
}

// UndoLastCheckIn removes the most recent check-in for the goal on the given
// day, returning the removed row. Ledger rows are never touched; the ledger
// is append-only and forward-only.
func (d *DB) UndoLastCheckIn(goalID, dateKey string) (*domain.CheckIn, error) {
	var removed *domain.CheckIn
	err := d.inTx(func(tx *sql.Tx) error {
		row := tx.QueryRow(
			`SELECT id, goal_id, user_id, timestamp, local_date_key, week_key, is_partial
			 FROM checkins WHERE goal_id = ? AND local_date_key = ?
			 ORDER BY timestamp DESC LIMIT 1`,
			goalID, dateKey,
		)
		ci, err := scanCheckIn(row)
		if err == sql.ErrNoRows {
			return domain.ErrNothingToUndo
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM checkins WHERE id = ?`, ci.ID); err != nil {
			return err
		}
		removed = ci
		return nil
	})
	return removed, err
}

// UpgradePartial flips a partial check-in to full. The single allowed
// mutation of a check-in, and only for single-target goals.
func (d *DB) UpgradePartial(checkInID string, award *domain.PointLedgerEntry) error {
	return d.inTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE checkins SET is_partial = 0 WHERE id = ? AND is_partial = 1`,
			checkInID,
		)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrAlreadyFull
		}
		if award != nil {
			return applyAward(tx, *award)
		}
		return nil
	})
}

// CountForDay returns how many check-ins a goal has on one day, partials
// included. This is the slot-occupancy count for the daily cap.
func (d *DB) CountForDay(goalID, dateKey string) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM checkins WHERE goal_id = ? AND local_date_key = ?`,
		goalID, dateKey,
	).Scan(&count)
	return count, err
}

// FullCountForDay returns how many completed (non-partial) check-ins a goal
// has on one day. A day only qualifies on this count.
func (d *DB) FullCountForDay(goalID, dateKey string) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM checkins WHERE goal_id = ? AND local_date_key = ? AND is_partial = 0`,
		goalID, dateKey,
	).Scan(&count)
	return count, err
}

// CountsByDay returns the goal's full day-key → count history. Partial
// check-ins count toward the day only once upgraded, so they are excluded.
func (d *DB) CountsByDay(goalID string) (map[string]int, error) {
	rows, err := d.db.Query(
		`SELECT local_date_key, COUNT(*) FROM checkins
		 WHERE goal_id = ? AND is_partial = 0 GROUP BY local_date_key`,
		goalID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// CountsByDayInWeek returns day counts restricted to one week key.
func (d *DB) CountsByDayInWeek(goalID, weekKey string) (map[string]int, error) {
	rows, err := d.db.Query(
		`SELECT local_date_key, COUNT(*) FROM checkins
		 WHERE goal_id = ? AND week_key = ? AND is_partial = 0
		 GROUP BY local_date_key`,
		goalID, weekKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// WeekCheckInCount returns a goal's total check-ins for one week.
func (d *DB) WeekCheckInCount(goalID, weekKey string) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM checkins WHERE goal_id = ? AND week_key = ? AND is_partial = 0`,
		goalID, weekKey,
	).Scan(&count)
	return count, err
}

// HasCheckInInWeek reports whether the goal saw any check-in in the week.
func (d *DB) HasCheckInInWeek(goalID, weekKey string) (bool, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM checkins WHERE goal_id = ? AND week_key = ? LIMIT 1`,
		goalID, weekKey,
	).Scan(&count)
	return count > 0, err
}

// ApplyBackfill reconciles one day's check-ins to a desired state: the
// tracker computes the insert/delete diff outside the transaction, this
// applies it inside one, together with any point award.
func (d *DB) ApplyBackfill(inserts []domain.CheckIn, deleteIDs []string, award *domain.PointLedgerEntry) error {
	return d.inTx(func(tx *sql.Tx) error {
		for _, id := range deleteIDs {
			if _, err := tx.Exec(`DELETE FROM checkins WHERE id = ?`, id); err != nil {
				return fmt.Errorf("delete checkin: %w", err)
			}
		}
		for _, ci := range inserts {
			_, err := tx.Exec(
				`INSERT INTO checkins (id, goal_id, user_id, timestamp, local_date_key, week_key, is_partial)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				ci.ID, ci.GoalID, ci.UserID, ci.Timestamp.Unix(),
				ci.LocalDateKey, ci.WeekKey, ci.IsPartial,
			)
			if err != nil {
				return fmt.Errorf("insert checkin: %w", err)
			}
		}
		if award != nil {
			return applyAward(tx, *award)
		}
		return nil
	})
}

// CheckInsForDay lists a goal's check-ins on one day, oldest first.
func (d *DB) CheckInsForDay(goalID, dateKey string) ([]domain.CheckIn, error) {
	rows, err := d.db.Query(
		`SELECT id, goal_id, user_id, timestamp, local_date_key, week_key, is_partial
		 FROM checkins WHERE goal_id = ? AND local_date_key = ? ORDER BY timestamp`,
		goalID, dateKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checkins []domain.CheckIn
	for rows.Next() {
		var ci domain.CheckIn
		var ts int64
		if err := rows.Scan(&ci.ID, &ci.GoalID, &ci.UserID, &ts,
			&ci.LocalDateKey, &ci.WeekKey, &ci.IsPartial); err != nil {
			return nil, err
		}
		ci.Timestamp = time.Unix(ts, 0)
		checkins = append(checkins, ci)
	}
	return checkins, rows.Err()
}

func scanCheckIn(row *sql.Row) (*domain.CheckIn, error) {
	var ci domain.CheckIn
	var ts int64
	err := row.Scan(&ci.ID, &ci.GoalID, &ci.UserID, &ts,
		&ci.LocalDateKey, &ci.WeekKey, &ci.IsPartial)
	if err != nil {
		return nil, err
	}
	ci.Timestamp = time.Unix(ts, 0)
	return &ci, nil
}
