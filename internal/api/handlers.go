package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/steady-app/steady/internal/app/challenge"
	"github.com/steady-app/steady/internal/domain"
	"github.com/steady-app/steady/internal/infra/metrics"
)

// ─── Goals ──────────────────────────────────────────────────────────────────

type createGoalRequest struct {
	Name          string `json:"name"`
	Cadence       string `json:"cadence"`
	DailyTarget   int    `json:"daily_target"`
	WeeklyTarget  int    `json:"weekly_target"`
	StreakFreezes int    `json:"streak_freezes"`
	GroupID       string `json:"group_id"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	goal, err := s.tracker.CreateGoal(userID(r), domain.Goal{
		Name:          req.Name,
		GroupID:       req.GroupID,
		Cadence:       domain.Cadence(req.Cadence),
		DailyTarget:   req.DailyTarget,
		WeeklyTarget:  req.WeeklyTarget,
		StreakFreezes: req.StreakFreezes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	goals, err := s.tracker.Goals(userID(r), activeOnly)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if goals == nil {
		goals = []domain.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handleArchiveGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.ArchiveGoal(userID(r), chi.URLParam(r, "goalID")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteGoal(userID(r), chi.URLParam(r, "goalID")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ─── Check-ins ──────────────────────────────────────────────────────────────

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Partial bool `json:"partial"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	res, err := s.tracker.CheckIn(userID(r), chi.URLParam(r, "goalID"), s.timezone(r), req.Partial)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	kind := "full"
	if req.Partial {
		kind = "partial"
	}
	metrics.CheckIns.WithLabelValues(kind).Inc()
	if res.Award.PointsMilli > 0 {
		metrics.PointsAwarded.WithLabelValues(string(domain.ReasonCheckIn)).
			Add(float64(res.Award.PointsMilli))
	}
	if res.Award.BonusApplied > 1 {
		metrics.StreakBonuses.Inc()
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	removed, err := s.tracker.Undo(userID(r), chi.URLParam(r, "goalID"), s.timezone(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.CheckInsUndone.Inc()
	writeJSON(w, http.StatusOK, removed)
}

func (s *Server) handleUpgradePartial(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.UpgradePartial(userID(r), chi.URLParam(r, "goalID"), s.timezone(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if res.Award.PointsMilli > 0 {
		metrics.PointsAwarded.WithLabelValues(string(domain.ReasonCheckIn)).
			Add(float64(res.Award.PointsMilli))
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSetDayCount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := s.tracker.SetDayCount(userID(r), chi.URLParam(r, "goalID"),
		chi.URLParam(r, "dateKey"), req.Count, s.timezone(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if res.Inserted > 0 {
		metrics.CheckIns.WithLabelValues("backfill").Add(float64(res.Inserted))
	}
	if res.Award.PointsMilli > 0 {
		metrics.PointsAwarded.WithLabelValues(string(domain.ReasonBackfill)).
			Add(float64(res.Award.PointsMilli))
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	sum, err := s.tracker.Streaks(userID(r), chi.URLParam(r, "goalID"), s.timezone(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// ─── Points ─────────────────────────────────────────────────────────────────

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	agg, err := s.tracker.Aggregates(userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := s.tracker.Ledger(userID(r), queryInt(r, "limit", "50"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.PointLedgerEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleRebuildPoints(w http.ResponseWriter, r *http.Request) {
	agg, err := s.tracker.RebuildAggregates(userID(r), s.timezone(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

// ─── Groups ─────────────────────────────────────────────────────────────────

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	g, err := s.groups.Create(req.Name, userID(r), s.timezone(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.groups.Get(chi.URLParam(r, "groupID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.Join(chi.URLParam(r, "groupID"), userID(r), s.timezone(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	members, err := s.groups.Roster(chi.URLParam(r, "groupID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if members == nil {
		members = []domain.GroupMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleRefreshTier(w http.ResponseWriter, r *http.Request) {
	status, err := s.groups.RefreshTier(chi.URLParam(r, "groupID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if status.Upgraded {
		metrics.TierUpgrades.Inc()
	}
	writeJSON(w, http.StatusOK, status)
}

// ─── Challenges ─────────────────────────────────────────────────────────────

type createChallengeRequest struct {
	Mode         string `json:"mode"`
	Threshold    *int   `json:"threshold"`
	DurationDays int    `json:"duration_days"`
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	var req createChallengeRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	// A bare POST proposes a standard challenge; a configured body takes
	// the admin path.
	var c *domain.GroupChallenge
	var err error
	if req.Mode == "" && req.Threshold == nil && req.DurationDays == 0 {
		c, err = s.challenges.CreateSimple(groupID, userID(r), s.timezone(r))
	} else {
		cfg := challenge.Config{
			Mode:         domain.ModeStandard,
			Threshold:    challenge.DefaultThreshold,
			DurationDays: req.DurationDays,
		}
		if req.Mode != "" {
			cfg.Mode = domain.ChallengeMode(req.Mode)
		}
		if req.Threshold != nil {
			cfg.Threshold = *req.Threshold
		}
		c, err = s.challenges.CreateConfigured(groupID, userID(r), s.timezone(r), cfg)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleChallengeForWeek(w http.ResponseWriter, r *http.Request) {
	c, err := s.challenges.ChallengeForWeek(chi.URLParam(r, "groupID"), chi.URLParam(r, "weekKey"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	c, err := s.challenges.Approve(chi.URLParam(r, "challengeID"), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	changed, err := s.challenges.EvaluateGroup(chi.URLParam(r, "groupID"), s.timezone(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	for _, c := range changed {
		metrics.ChallengesEvaluated.WithLabelValues(evalOutcome(c.Status)).Inc()
	}
	if changed == nil {
		changed = []domain.GroupChallenge{}
	}
	writeJSON(w, http.StatusOK, changed)
}

func evalOutcome(s domain.ChallengeStatus) string {
	switch s {
	case domain.ChallengeActive:
		return "activated"
	case domain.ChallengeSucceeded:
		return "succeeded"
	case domain.ChallengeFailed:
		return "failed"
	default:
		return "unchanged"
	}
}
