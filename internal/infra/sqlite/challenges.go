package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/steady-app/steady/internal/domain"
)

// ─── Challenge Repository ───────────────────────────────────────────────────

// InsertChallenge creates a challenge with the creator's approval already
// recorded, atomically. The (group, week) uniqueness rejects a second
// challenge for the same week with ErrChallengeExists.
func (d *DB) InsertChallenge(c domain.GroupChallenge) error {
	teams, err := marshalAssignments(c.TeamAssignments)
	if err != nil {
		return err
	}
	duos, err := marshalAssignments(c.DuoAssignments)
	if err != nil {
		return err
	}

	return d.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO challenges (id, group_id, week_key, mode, threshold, duration_days,
			   start_date, end_date, status, team_assignments, duo_assignments, created_by, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.GroupID, c.WeekKey, string(c.Mode), c.Threshold, c.DurationDays,
			c.StartDate.Unix(), c.EndDate.Unix(), string(c.Status),
			teams, duos, c.CreatedBy, c.CreatedAt.Unix(),
		)
		if isUniqueViolation(err) {
			return domain.ErrChallengeExists
		}
		if err != nil {
			return fmt.Errorf("insert challenge: %w", err)
		}

		// Creator auto-approves.
		_, err = tx.Exec(
			`INSERT INTO challenge_approvals (challenge_id, user_id, approved_at) VALUES (?, ?, ?)`,
			c.ID, c.CreatedBy, c.CreatedAt.Unix(),
		)
		return err
	})
}

// GetChallenge retrieves a challenge by ID.
func (d *DB) GetChallenge(id string) (*domain.GroupChallenge, error) {
	return d.scanOneChallenge(d.db.QueryRow(challengeSelect+` WHERE id = ?`, id))
}

// ChallengeForWeek returns the group's challenge for a week key, if any.
func (d *DB) ChallengeForWeek(groupID, weekKey string) (*domain.GroupChallenge, error) {
	c, err := d.scanOneChallenge(d.db.QueryRow(
		challengeSelect+` WHERE group_id = ? AND week_key = ?`, groupID, weekKey,
	))
	if err == domain.ErrChallengeNotFound {
		return nil, nil
	}
	return c, err
}

// ListChallengesByStatus returns a group's challenges in a given status.
func (d *DB) ListChallengesByStatus(groupID string, statuses ...domain.ChallengeStatus) ([]domain.GroupChallenge, error) {
	placeholders := make([]string, len(statuses))
	args := []interface{}{groupID}
	for i, s := range statuses {
		placeholders[i] = "?"
		args = append(args, string(s))
	}
	rows, err := d.db.Query(
		challengeSelect+` WHERE group_id = ? AND status IN (`+strings.Join(placeholders, ",")+`) ORDER BY created_at`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var challenges []domain.GroupChallenge
	for rows.Next() {
		c, err := scanChallengeRows(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, *c)
	}
	return challenges, rows.Err()
}

// ApproveChallenge records one member's approval and, when the approval
// count reaches the member count, flips PENDING → SCHEDULED, all inside one
// transaction, so two simultaneous last-approvers cannot both observe "not
// yet complete".
func (d *DB) ApproveChallenge(challengeID, userID string, memberCount int, at time.Time) (scheduled bool, err error) {
	err = d.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO challenge_approvals (challenge_id, user_id, approved_at) VALUES (?, ?, ?)`,
			challengeID, userID, at.Unix(),
		)
		if isUniqueViolation(err) {
			return domain.ErrDuplicateApproval
		}
		if err != nil {
			return fmt.Errorf("insert approval: %w", err)
		}

		var approvals int
		if err := tx.QueryRow(
			`SELECT COUNT(*) FROM challenge_approvals WHERE challenge_id = ?`, challengeID,
		).Scan(&approvals); err != nil {
			return err
		}
		if approvals < memberCount {
			return nil
		}

		res, err := tx.Exec(
			`UPDATE challenges SET status = ? WHERE id = ? AND status = ?`,
			string(domain.ChallengeScheduled), challengeID, string(domain.ChallengePending),
		)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		scheduled = n == 1
		return nil
	})
	return scheduled, err
}

// ApprovalCount returns how many distinct members approved a challenge.
func (d *DB) ApprovalCount(challengeID string) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM challenge_approvals WHERE challenge_id = ?`, challengeID,
	).Scan(&count)
	return count, err
}

// ActivateChallenge flips SCHEDULED → ACTIVE. The conditional update makes
// repeated evaluation a no-op.
func (d *DB) ActivateChallenge(id string) (bool, error) {
	res, err := d.db.Exec(
		`UPDATE challenges SET status = ? WHERE id = ? AND status = ?`,
		string(domain.ChallengeActive), id, string(domain.ChallengeScheduled),
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// FinishChallenge flips ACTIVE → SUCCEEDED/FAILED and, on success, bumps the
// group rank in the same transaction. Guarded by the ACTIVE condition so
// concurrent or repeated evaluation can never double-increment rank.
func (d *DB) FinishChallenge(id, groupID string, succeeded bool) (applied bool, err error) {
	final := domain.ChallengeFailed
	if succeeded {
		final = domain.ChallengeSucceeded
	}
	err = d.inTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE challenges SET status = ? WHERE id = ? AND status = ?`,
			string(final), id, string(domain.ChallengeActive),
		)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return nil // already finished by another evaluator
		}
		applied = true
		if succeeded {
			_, err = tx.Exec(`UPDATE groups SET rank = rank + 1 WHERE id = ?`, groupID)
		}
		return err
	})
	return applied, err
}

// ─── Scan helpers ───────────────────────────────────────────────────────────

const challengeSelect = `SELECT id, group_id, week_key, mode, threshold, duration_days,
	start_date, end_date, status, team_assignments, duo_assignments, created_by, created_at
	FROM challenges`

func (d *DB) scanOneChallenge(row *sql.Row) (*domain.GroupChallenge, error) {
	var c domain.GroupChallenge
	var mode, status string
	var teams, duos sql.NullString
	var start, end, created int64
	err := row.Scan(&c.ID, &c.GroupID, &c.WeekKey, &mode, &c.Threshold, &c.DurationDays,
		&start, &end, &status, &teams, &duos, &c.CreatedBy, &created)
	if err == sql.ErrNoRows {
		return nil, domain.ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}
	return fillChallenge(&c, mode, status, teams, duos, start, end, created)
}

func scanChallengeRows(rows *sql.Rows) (*domain.GroupChallenge, error) {
	var c domain.GroupChallenge
	var mode, status string
	var teams, duos sql.NullString
	var start, end, created int64
	err := rows.Scan(&c.ID, &c.GroupID, &c.WeekKey, &mode, &c.Threshold, &c.DurationDays,
		&start, &end, &status, &teams, &duos, &c.CreatedBy, &created)
	if err != nil {
		return nil, err
	}
	return fillChallenge(&c, mode, status, teams, duos, start, end, created)
}

func fillChallenge(c *domain.GroupChallenge, mode, status string, teams, duos sql.NullString, start, end, created int64) (*domain.GroupChallenge, error) {
	c.Mode = domain.ChallengeMode(mode)
	c.Status = domain.ChallengeStatus(status)
	c.StartDate = time.Unix(start, 0)
	c.EndDate = time.Unix(end, 0)
	c.CreatedAt = time.Unix(created, 0)

	var err error
	if c.TeamAssignments, err = unmarshalAssignments(teams); err != nil {
		return nil, err
	}
	if c.DuoAssignments, err = unmarshalAssignments(duos); err != nil {
		return nil, err
	}
	return c, nil
}

func marshalAssignments(a [][]string) (interface{}, error) {
	if a == nil {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal assignments: %w", err)
	}
	return string(b), nil
}

func unmarshalAssignments(s sql.NullString) ([][]string, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var a [][]string
	if err := json.Unmarshal([]byte(s.String), &a); err != nil {
		return nil, fmt.Errorf("unmarshal assignments: %w", err)
	}
	return a, nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite surfaces these as plain errors, so match on message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
