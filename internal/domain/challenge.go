package domain

import "time"

// ─── Challenge Types ────────────────────────────────────────────────────────

// ChallengeMode selects how a group challenge scores its members.
type ChallengeMode string

const (
	ModeStandard  ChallengeMode = "STANDARD"
	ModeTeamVTeam ChallengeMode = "TEAM_VS_TEAM"
	ModeDuo       ChallengeMode = "DUO_COMPETITION"
)

// ChallengeStatus is the state machine position.
// PENDING → SCHEDULED → ACTIVE → {SUCCEEDED | FAILED}.
type ChallengeStatus string

const (
	ChallengePending   ChallengeStatus = "PENDING"
	ChallengeScheduled ChallengeStatus = "SCHEDULED"
	ChallengeActive    ChallengeStatus = "ACTIVE"
	ChallengeSucceeded ChallengeStatus = "SUCCEEDED"
	ChallengeFailed    ChallengeStatus = "FAILED"
)

// GroupChallenge is a weekly group commitment. Exactly one challenge may
// exist per (group, week key). Team and duo assignments are computed once at
// creation and frozen.
type GroupChallenge struct {
	ID              string          `json:"id"`
	GroupID         string          `json:"group_id"`
	WeekKey         string          `json:"week_key"`
	Mode            ChallengeMode   `json:"mode"`
	Threshold       int             `json:"threshold"` // completion percent, 0–100
	DurationDays    int             `json:"duration_days"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Status          ChallengeStatus `json:"status"`
	TeamAssignments [][]string      `json:"team_assignments,omitempty"` // two member-id halves
	DuoAssignments  [][]string      `json:"duo_assignments,omitempty"`  // pairs, last may be solo
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ChallengeApproval records one member's approval, unique per
// (challenge, user).
type ChallengeApproval struct {
	ChallengeID string    `json:"challenge_id"`
	UserID      string    `json:"user_id"`
	ApprovedAt  time.Time `json:"approved_at"`
}

// ─── Group Types ────────────────────────────────────────────────────────────

// Group holds the shared accountability state: the current tier ladder
// position, a trailing weekly completion rate, and a rank that only moves
// upward (incremented on challenge success).
type Group struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	CurrentTier          string    `json:"current_tier"`
	WeeklyCompletionRate float64   `json:"weekly_completion_rate"`
	LastTierUpdate       time.Time `json:"last_tier_update"`
	Rank                 int       `json:"rank"`
	CreatedAt            time.Time `json:"created_at"`
}

// GroupMember ties a user to a group. Timezone is the member's IANA zone,
// needed for week-boundary math during challenge evaluation.
type GroupMember struct {
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	Timezone string    `json:"timezone"`
	IsAdmin  bool      `json:"is_admin"`
	JoinedAt time.Time `json:"joined_at"`
}
