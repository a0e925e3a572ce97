package challenge

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/steady-app/steady/internal/app/timekey"
	"github.com/steady-app/steady/internal/domain"
	"github.com/steady-app/steady/internal/infra/sqlite"
)

// Defaults for a simple (member-created) challenge.
const (
	DefaultThreshold    = 70
	DefaultDurationDays = 7
)

// Service runs the challenge lifecycle over storage.
type Service struct {
	db *sqlite.DB

	// Injectable clock and random source for deterministic tests.
	now     func() time.Time
	newRand func() *rand.Rand
}

// NewService creates a challenge service.
func NewService(db *sqlite.DB) *Service {
	return &Service{
		db:  db,
		now: time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// SetClock overrides the clock. Test hook.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetRandSource overrides the assignment shuffle source. Test hook.
func (s *Service) SetRandSource(f func() *rand.Rand) { s.newRand = f }

// ─── Creation ───────────────────────────────────────────────────────────────

// Config selects the shape of a configured challenge.
type Config struct {
	Mode         domain.ChallengeMode
	Threshold    int
	DurationDays int
}

// CreateSimple proposes a STANDARD challenge with default settings for the
// next ISO week. Any member may do this.
func (s *Service) CreateSimple(groupID, userID, tz string) (*domain.GroupChallenge, error) {
	return s.create(groupID, userID, tz, Config{
		Mode:         domain.ModeStandard,
		Threshold:    DefaultThreshold,
		DurationDays: DefaultDurationDays,
	}, false)
}

// CreateConfigured proposes a challenge with explicit mode, threshold and
// duration. Admin only, and the group needs at least two members.
func (s *Service) CreateConfigured(groupID, userID, tz string, cfg Config) (*domain.GroupChallenge, error) {
	return s.create(groupID, userID, tz, cfg, true)
}

func (s *Service) create(groupID, userID, tz string, cfg Config, configured bool) (*domain.GroupChallenge, error) {
	member, err := s.db.GetMember(groupID, userID)
	if err != nil {
		return nil, err
	}
	if configured && !member.IsAdmin {
		return nil, domain.ErrNotGroupAdmin
	}

	switch cfg.Mode {
	case domain.ModeStandard, domain.ModeTeamVTeam, domain.ModeDuo:
	default:
		return nil, domain.ErrInvalidMode
	}
	if cfg.Threshold < 0 || cfg.Threshold > 100 {
		return nil, domain.ErrInvalidThreshold
	}
	if cfg.DurationDays <= 0 || cfg.DurationDays > 7 {
		cfg.DurationDays = DefaultDurationDays
	}

	members, err := s.db.Members(groupID)
	if err != nil {
		return nil, err
	}
	if configured && len(members) < 2 {
		return nil, domain.ErrGroupTooSmall
	}

	loc, err := timekey.Zone(tz)
	if err != nil {
		return nil, err
	}

	// Challenges are always scoped to the creator's next ISO week.
	now := s.now()
	start := timekey.WeekStart(now, loc).AddDate(0, 0, 7)
	weekKey := timekey.WeekKey(start, loc)

	c := domain.GroupChallenge{
		ID:           uuid.NewString(),
		GroupID:      groupID,
		WeekKey:      weekKey,
		Mode:         cfg.Mode,
		Threshold:    cfg.Threshold,
		DurationDays: cfg.DurationDays,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, cfg.DurationDays-1),
		Status:       domain.ChallengePending,
		CreatedBy:    userID,
		CreatedAt:    now,
	}

	// Team/duo assignment happens exactly once, here, and is frozen.
	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
	}
	switch cfg.Mode {
	case domain.ModeTeamVTeam:
		c.TeamAssignments = SplitTeams(memberIDs, s.newRand())
	case domain.ModeDuo:
		c.DuoAssignments = PairDuos(memberIDs, s.newRand())
	}

	if err := s.db.InsertChallenge(c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ─── Approval ───────────────────────────────────────────────────────────────

// Approve records a member's approval. The quorum comparison and the
// PENDING → SCHEDULED transition happen atomically with the insert, so the
// last-approver race is safe.
func (s *Service) Approve(challengeID, userID string) (*domain.GroupChallenge, error) {
	c, err := s.db.GetChallenge(challengeID)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.ChallengePending {
		return nil, domain.ErrChallengeNotOpen
	}
	if _, err := s.db.GetMember(c.GroupID, userID); err != nil {
		return nil, err
	}

	members, err := s.db.Members(c.GroupID)
	if err != nil {
		return nil, err
	}
	scheduled, err := s.db.ApproveChallenge(challengeID, userID, len(members), s.now())
	if err != nil {
		return nil, err
	}
	if scheduled {
		c.Status = domain.ChallengeScheduled
	}
	return c, nil
}

// ─── Evaluation ─────────────────────────────────────────────────────────────

// EvaluateGroup advances the group's challenges: SCHEDULED challenges whose
// week has arrived become ACTIVE; ACTIVE challenges whose week has passed
// are scored and finished. Idempotent and safe to call on every page load;
// all transitions are guarded by conditional updates.
func (s *Service) EvaluateGroup(groupID, tz string) ([]domain.GroupChallenge, error) {
	loc, err := timekey.Zone(tz)
	if err != nil {
		return nil, err
	}
	currentWeek := timekey.WeekKey(s.now(), loc)

	candidates, err := s.db.ListChallengesByStatus(groupID,
		domain.ChallengeScheduled, domain.ChallengeActive)
	if err != nil {
		return nil, err
	}

	var changed []domain.GroupChallenge
	for _, c := range candidates {
		switch {
		case c.Status == domain.ChallengeScheduled && c.WeekKey == currentWeek:
			if ok, err := s.db.ActivateChallenge(c.ID); err != nil {
				return nil, err
			} else if ok {
				c.Status = domain.ChallengeActive
				changed = append(changed, c)
			}

		// Week keys sort lexicographically, so "strictly in the past"
		// is a plain string comparison.
		case c.Status == domain.ChallengeActive && c.WeekKey < currentWeek:
			succeeded, err := s.challengeSucceeded(c)
			if err != nil {
				return nil, err
			}
			applied, err := s.db.FinishChallenge(c.ID, c.GroupID, succeeded)
			if err != nil {
				return nil, err
			}
			if applied {
				if succeeded {
					c.Status = domain.ChallengeSucceeded
				} else {
					c.Status = domain.ChallengeFailed
				}
				changed = append(changed, c)
			}
		}
	}
	return changed, nil
}

// challengeSucceeded checks every member's completion percentage for the
// challenge week against the threshold.
func (s *Service) challengeSucceeded(c domain.GroupChallenge) (bool, error) {
	members, err := s.db.Members(c.GroupID)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		pct, err := s.MemberCompletion(m.UserID, c.WeekKey)
		if err != nil {
			return false, err
		}
		if pct < float64(c.Threshold) {
			return false, nil
		}
	}
	return len(members) > 0, nil
}

// MemberCompletion returns a member's completion percentage for one week
// over all their currently-active goals: overall commitment, not just
// group goals. Zero goals scores zero.
func (s *Service) MemberCompletion(userID, weekKey string) (float64, error) {
	goals, err := s.db.ListUserGoals(userID, true)
	if err != nil {
		return 0, err
	}

	var done, expected int
	for _, g := range goals {
		target := g.WeeklyUnits()
		if target <= 0 {
			continue
		}
		count, err := s.db.WeekCheckInCount(g.ID, weekKey)
		if err != nil {
			return 0, err
		}
		if count > target {
			count = target
		}
		done += count
		expected += target
	}
	if expected == 0 {
		return 0, nil
	}
	return 100 * float64(done) / float64(expected), nil
}

// ChallengeForWeek exposes the group's challenge for a given week.
func (s *Service) ChallengeForWeek(groupID, weekKey string) (*domain.GroupChallenge, error) {
	c, err := s.db.ChallengeForWeek(groupID, weekKey)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrChallengeNotFound
	}
	return c, nil
}

// Approvals returns the current approval count, for display.
func (s *Service) Approvals(challengeID string) (int, error) {
	n, err := s.db.ApprovalCount(challengeID)
	if err != nil {
		return 0, fmt.Errorf("approval count: %w", err)
	}
	return n, nil
}
