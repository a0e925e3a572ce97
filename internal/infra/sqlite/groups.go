package sqlite

import (
	"database/sql"
	"time"

	"github.com/steady-app/steady/internal/domain"
)

// ─── Group Repository ───────────────────────────────────────────────────────

// InsertGroup creates a group.
func (d *DB) InsertGroup(g domain.Group) error {
	_, err := d.db.Exec(
		`INSERT INTO groups (id, name, current_tier, weekly_completion_rate, last_tier_update, rank, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.CurrentTier, g.WeeklyCompletionRate,
		nullableUnix(g.LastTierUpdate), g.Rank, g.CreatedAt.Unix(),
	)
	return err
}

// GetGroup retrieves a group by ID.
func (d *DB) GetGroup(id string) (*domain.Group, error) {
	var g domain.Group
	var lastUpdate sql.NullInt64
	var created int64
	err := d.db.QueryRow(
		`SELECT id, name, current_tier, weekly_completion_rate, last_tier_update, rank, created_at
		 FROM groups WHERE id = ?`, id,
	).Scan(&g.ID, &g.Name, &g.CurrentTier, &g.WeeklyCompletionRate,
		&lastUpdate, &g.Rank, &created)
	if err == sql.ErrNoRows {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastUpdate.Valid {
		g.LastTierUpdate = time.Unix(lastUpdate.Int64, 0)
	}
	g.CreatedAt = time.Unix(created, 0)
	return &g, nil
}

// AddMember adds a user to a group.
func (d *DB) AddMember(m domain.GroupMember) error {
	_, err := d.db.Exec(
		`INSERT INTO group_members (group_id, user_id, timezone, is_admin, joined_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.GroupID, m.UserID, m.Timezone, m.IsAdmin, m.JoinedAt.Unix(),
	)
	return err
}

// Members returns a group's roster.
func (d *DB) Members(groupID string) ([]domain.GroupMember, error) {
	rows, err := d.db.Query(
		`SELECT group_id, user_id, timezone, is_admin, joined_at
		 FROM group_members WHERE group_id = ? ORDER BY joined_at`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.GroupMember
	for rows.Next() {
		var m domain.GroupMember
		var joined int64
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Timezone, &m.IsAdmin, &joined); err != nil {
			return nil, err
		}
		m.JoinedAt = time.Unix(joined, 0)
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetMember returns one membership row, or ErrNotGroupMember.
func (d *DB) GetMember(groupID, userID string) (*domain.GroupMember, error) {
	var m domain.GroupMember
	var joined int64
	err := d.db.QueryRow(
		`SELECT group_id, user_id, timezone, is_admin, joined_at
		 FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	).Scan(&m.GroupID, &m.UserID, &m.Timezone, &m.IsAdmin, &joined)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotGroupMember
	}
	if err != nil {
		return nil, err
	}
	m.JoinedAt = time.Unix(joined, 0)
	return &m, nil
}

// UpdateGroupTier stores a freshly computed tier and completion rate.
func (d *DB) UpdateGroupTier(groupID, tierName string, completionRate float64, at time.Time) error {
	_, err := d.db.Exec(
		`UPDATE groups SET current_tier = ?, weekly_completion_rate = ?, last_tier_update = ?
		 WHERE id = ?`,
		tierName, completionRate, at.Unix(), groupID,
	)
	return err
}

func nullableUnix(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}
