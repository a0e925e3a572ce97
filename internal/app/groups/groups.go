// Package groups manages accountability groups: rosters, the trailing
// completion rate, and the tier ladder refresh.
package groups

import (
	"time"

	"github.com/google/uuid"

	"github.com/steady-app/steady/internal/app/challenge"
	"github.com/steady-app/steady/internal/app/tier"
	"github.com/steady-app/steady/internal/app/timekey"
	"github.com/steady-app/steady/internal/domain"
	"github.com/steady-app/steady/internal/infra/sqlite"
)

// Service manages group state. Completion percentages come from the
// challenge service so tiers and challenge evaluation always agree on the
// formula.
type Service struct {
	db         *sqlite.DB
	challenges *challenge.Service

	now func() time.Time
}

// NewService creates a group service.
func NewService(db *sqlite.DB, challenges *challenge.Service) *Service {
	return &Service{db: db, challenges: challenges, now: time.Now}
}

// SetClock overrides the clock. Test hook.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Create creates a group with the founding member as admin.
func (s *Service) Create(name, founderID, founderTZ string) (*domain.Group, error) {
	if _, err := timekey.Zone(founderTZ); err != nil {
		return nil, err
	}
	g := domain.Group{
		ID:          uuid.NewString(),
		Name:        name,
		CurrentTier: tier.Ladder[0].Name,
		CreatedAt:   s.now(),
	}
	if err := s.db.InsertGroup(g); err != nil {
		return nil, err
	}
	err := s.db.AddMember(domain.GroupMember{
		GroupID:  g.ID,
		UserID:   founderID,
		Timezone: founderTZ,
		IsAdmin:  true,
		JoinedAt: g.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Join adds a member to a group.
func (s *Service) Join(groupID, userID, tz string) error {
	if _, err := s.db.GetGroup(groupID); err != nil {
		return err
	}
	if _, err := timekey.Zone(tz); err != nil {
		return err
	}
	return s.db.AddMember(domain.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Timezone: tz,
		JoinedAt: s.now(),
	})
}

// Get returns a group.
func (s *Service) Get(groupID string) (*domain.Group, error) {
	return s.db.GetGroup(groupID)
}

// Roster returns the group's members.
func (s *Service) Roster(groupID string) ([]domain.GroupMember, error) {
	return s.db.Members(groupID)
}

// ─── Tier refresh ───────────────────────────────────────────────────────────

// TierStatus is the result of a tier recomputation.
type TierStatus struct {
	Group          domain.Group `json:"group"`
	Tier           tier.Tier    `json:"tier"`
	CompletionRate float64      `json:"completion_rate"`
	Upgraded       bool         `json:"upgraded"`
}

// RefreshTier recomputes the group's completion rate for the current week
// (each member scored in their own timezone) and moves the group onto the
// matching tier rung.
func (s *Service) RefreshTier(groupID string) (*TierStatus, error) {
	group, err := s.db.GetGroup(groupID)
	if err != nil {
		return nil, err
	}
	members, err := s.db.Members(groupID)
	if err != nil {
		return nil, err
	}

	var rate float64
	if len(members) > 0 {
		var sum float64
		for _, m := range members {
			loc, err := timekey.Zone(m.Timezone)
			if err != nil {
				loc = time.UTC
			}
			weekKey := timekey.WeekKey(s.now(), loc)
			pct, err := s.challenges.MemberCompletion(m.UserID, weekKey)
			if err != nil {
				return nil, err
			}
			sum += pct
		}
		rate = sum / float64(len(members))
	}

	newTier := tier.TierFor(rate)
	upgraded := tier.WasUpgraded(group.CurrentTier, newTier.Name)

	now := s.now()
	if err := s.db.UpdateGroupTier(groupID, newTier.Name, rate, now); err != nil {
		return nil, err
	}

	group.CurrentTier = newTier.Name
	group.WeeklyCompletionRate = rate
	group.LastTierUpdate = now
	return &TierStatus{
		Group:          *group,
		Tier:           newTier,
		CompletionRate: rate,
		Upgraded:       upgraded,
	}, nil
}
