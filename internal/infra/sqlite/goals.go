package sqlite

import (
	"database/sql"
	"time"

	"github.com/steady-app/steady/internal/domain"
)

// ─── Goal Repository ────────────────────────────────────────────────────────

// InsertGoal creates a goal record.
func (d *DB) InsertGoal(g domain.Goal) error {
	var weekly sql.NullInt64
	if g.Cadence == domain.CadenceWeekly {
		weekly = sql.NullInt64{Int64: int64(g.WeeklyTarget), Valid: true}
	}
	_, err := d.db.Exec(
		`INSERT INTO goals (id, user_id, group_id, name, cadence, daily_target, weekly_target, active, streak_freezes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.GroupID, g.Name, string(g.Cadence), g.DailyTarget,
		weekly, g.Active, g.StreakFreezes, g.CreatedAt.Unix(),
	)
	return err
}

// GetGoal retrieves a goal by ID.
func (d *DB) GetGoal(id string) (*domain.Goal, error) {
	row := d.db.QueryRow(
		`SELECT id, user_id, group_id, name, cadence, daily_target, weekly_target, active, streak_freezes, created_at
		 FROM goals WHERE id = ?`, id,
	)
	return scanGoal(row)
}

// ListUserGoals returns a user's goals, optionally only active ones.
func (d *DB) ListUserGoals(userID string, activeOnly bool) ([]domain.Goal, error) {
	query := `SELECT id, user_id, group_id, name, cadence, daily_target, weekly_target, active, streak_freezes, created_at
	          FROM goals WHERE user_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY created_at`

	rows, err := d.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []domain.Goal
	for rows.Next() {
		g, err := scanGoalRows(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

// ArchiveGoal soft-deletes a goal. Check-ins and ledger history remain.
func (d *DB) ArchiveGoal(id string) error {
	_, err := d.db.Exec(`UPDATE goals SET active = 0 WHERE id = ?`, id)
	return err
}

// DeleteGoal hard-deletes a goal; its check-ins cascade. Ledger rows stay;
// the ledger is append-only even across goal deletion.
func (d *DB) DeleteGoal(id string) error {
	_, err := d.db.Exec(`DELETE FROM goals WHERE id = ?`, id)
	return err
}

func scanGoal(row *sql.Row) (*domain.Goal, error) {
	var g domain.Goal
	var cadence string
	var weekly sql.NullInt64
	var created int64
	err := row.Scan(&g.ID, &g.UserID, &g.GroupID, &g.Name, &cadence,
		&g.DailyTarget, &weekly, &g.Active, &g.StreakFreezes, &created)
	if err == sql.ErrNoRows {
		return nil, domain.ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}
	g.Cadence = domain.Cadence(cadence)
	if weekly.Valid {
		g.WeeklyTarget = int(weekly.Int64)
	}
	g.CreatedAt = time.Unix(created, 0)
	return &g, nil
}

func scanGoalRows(rows *sql.Rows) (*domain.Goal, error) {
	var g domain.Goal
	var cadence string
	var weekly sql.NullInt64
	var created int64
	err := rows.Scan(&g.ID, &g.UserID, &g.GroupID, &g.Name, &cadence,
		&g.DailyTarget, &weekly, &g.Active, &g.StreakFreezes, &created)
	if err != nil {
		return nil, err
	}
	g.Cadence = domain.Cadence(cadence)
	if weekly.Valid {
		g.WeeklyTarget = int(weekly.Int64)
	}
	g.CreatedAt = time.Unix(created, 0)
	return &g, nil
}
