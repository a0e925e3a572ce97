package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, with no infrastructure dependency. Rejections are
// ordinary return values; callers branch with errors.Is.

var (
	// Goal errors
	ErrGoalNotFound   = errors.New("goal not found")
	ErrGoalInactive   = errors.New("goal is archived")
	ErrNotGoalOwner   = errors.New("goal belongs to another user")
	ErrInvalidCadence = errors.New("cadence must be DAILY or WEEKLY")
	ErrInvalidTarget  = errors.New("goal target must be at least 1")

	// Check-in errors
	ErrFutureDate         = errors.New("date is in the future")
	ErrInvalidDateKey     = errors.New("date must be formatted YYYY-MM-DD")
	ErrDailyTargetReached = errors.New("already at the daily target for this goal")
	ErrNothingToUndo      = errors.New("no check-in today to undo")
	ErrAlreadyFull        = errors.New("check-in is already a full completion")
	ErrPartialMultiTarget = errors.New("partial check-ins require a daily target of 1")
	ErrCountOutOfRange    = errors.New("count must be between 0 and the daily target")
	ErrUnknownTimezone    = errors.New("unknown IANA timezone")

	// Group errors
	ErrGroupNotFound  = errors.New("group not found")
	ErrNotGroupMember = errors.New("user is not a member of this group")
	ErrNotGroupAdmin  = errors.New("only a group admin may configure this challenge")
	ErrGroupTooSmall  = errors.New("group needs at least 2 members for this challenge mode")

	// Challenge errors
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrChallengeExists   = errors.New("a challenge already exists for that week")
	ErrDuplicateApproval = errors.New("member has already approved this challenge")
	ErrInvalidThreshold  = errors.New("threshold must be between 0 and 100")
	ErrInvalidMode       = errors.New("unknown challenge mode")
	ErrChallengeNotOpen  = errors.New("challenge is no longer accepting approvals")
)
