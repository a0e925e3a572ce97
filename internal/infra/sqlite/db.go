// Package sqlite provides SQLite-based persistent storage for Steady.
// Uses WAL mode for concurrent reads and crash-safe writes. The engines
// themselves are pure; this package owns the transactional contracts:
// check-in + ledger + aggregates as one unit, quorum checks atomic with
// approval inserts, and conditional status transitions for idempotent
// challenge evaluation.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/steady.db.
// Enables WAL mode, foreign keys, and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "steady.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping verifies the connection is alive. Used by health checks.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS goals (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			group_id       TEXT NOT NULL DEFAULT '',
			name           TEXT NOT NULL,
			cadence        TEXT NOT NULL,
			daily_target   INTEGER NOT NULL DEFAULT 1,
			weekly_target  INTEGER,
			active         BOOLEAN NOT NULL DEFAULT 1,
			streak_freezes INTEGER NOT NULL DEFAULT 1,
			created_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id, active)`,

		`CREATE TABLE IF NOT EXISTS checkins (
			id             TEXT PRIMARY KEY,
			goal_id        TEXT NOT NULL REFERENCES goals(id) ON DELETE CASCADE,
			user_id        TEXT NOT NULL,
			timestamp      INTEGER NOT NULL,
			local_date_key TEXT NOT NULL,
			week_key       TEXT NOT NULL,
			is_partial     BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checkins_goal_day ON checkins(goal_id, local_date_key)`,
		`CREATE INDEX IF NOT EXISTS idx_checkins_goal_week ON checkins(goal_id, week_key)`,
		`CREATE INDEX IF NOT EXISTS idx_checkins_user_week ON checkins(user_id, week_key)`,

		// Append-only point ledger. The (user, source) uniqueness makes
		// awards idempotent under concurrent check-in handling.
		`CREATE TABLE IF NOT EXISTS point_ledger (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      TEXT NOT NULL,
			goal_id      TEXT NOT NULL,
			week_key     TEXT NOT NULL,
			points_milli INTEGER NOT NULL,
			reason       TEXT NOT NULL,
			source_id    TEXT NOT NULL,
			created_at   INTEGER NOT NULL,
			UNIQUE(user_id, source_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_user_week ON point_ledger(user_id, week_key)`,

		// Cached projection over the ledger; rebuildable, never authoritative.
		`CREATE TABLE IF NOT EXISTS user_points (
			user_id               TEXT PRIMARY KEY,
			points_week_key       TEXT NOT NULL DEFAULT '',
			points_week_milli     INTEGER NOT NULL DEFAULT 0,
			points_lifetime_milli INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS groups (
			id                     TEXT PRIMARY KEY,
			name                   TEXT NOT NULL,
			current_tier           TEXT NOT NULL DEFAULT 'Bronze',
			weekly_completion_rate REAL NOT NULL DEFAULT 0,
			last_tier_update       INTEGER,
			rank                   INTEGER NOT NULL DEFAULT 0,
			created_at             INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS group_members (
			group_id  TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			user_id   TEXT NOT NULL,
			timezone  TEXT NOT NULL DEFAULT 'UTC',
			is_admin  BOOLEAN NOT NULL DEFAULT 0,
			joined_at INTEGER NOT NULL,
			PRIMARY KEY (group_id, user_id)
		)`,

		// One challenge per (group, week).
		`CREATE TABLE IF NOT EXISTS challenges (
			id               TEXT PRIMARY KEY,
			group_id         TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			week_key         TEXT NOT NULL,
			mode             TEXT NOT NULL,
			threshold        INTEGER NOT NULL,
			duration_days    INTEGER NOT NULL DEFAULT 7,
			start_date       INTEGER NOT NULL,
			end_date         INTEGER NOT NULL,
			status           TEXT NOT NULL,
			team_assignments TEXT,
			duo_assignments  TEXT,
			created_by       TEXT NOT NULL,
			created_at       INTEGER NOT NULL,
			UNIQUE(group_id, week_key)
		)`,
		`CREATE TABLE IF NOT EXISTS challenge_approvals (
			challenge_id TEXT NOT NULL REFERENCES challenges(id) ON DELETE CASCADE,
			user_id      TEXT NOT NULL,
			approved_at  INTEGER NOT NULL,
			PRIMARY KEY (challenge_id, user_id)
		)`,
	}

	for i, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// inTx runs fn inside a transaction, committing on nil and rolling back
// otherwise.
func (d *DB) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
