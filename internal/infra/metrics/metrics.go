// Package metrics provides Prometheus metrics for Steady: counters and
// histograms for check-ins, points, streaks, challenges, and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Check-ins ──────────────────────────────────────────────────────────────

// CheckIns tracks recorded check-ins by kind (full, partial, backfill).
var CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "steady",
	Name:      "checkins_total",
	Help:      "Total recorded check-ins.",
}, []string{"kind"})

// CheckInsUndone tracks undo operations.
var CheckInsUndone = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "steady",
	Name:      "checkins_undone_total",
	Help:      "Total check-ins removed by undo.",
})

// ─── Points ─────────────────────────────────────────────────────────────────

// PointsAwarded tracks milli-points written to the ledger by reason.
var PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "steady",
	Name:      "points_awarded_milli_total",
	Help:      "Total milli-points awarded, by ledger reason.",
}, []string{"reason"})

// StreakBonuses tracks awards that carried a streak multiplier.
var StreakBonuses = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "steady",
	Name:      "streak_bonuses_total",
	Help:      "Total awards boosted by an active streak.",
})

// ─── Challenges ─────────────────────────────────────────────────────────────

// ChallengesEvaluated tracks finished challenge evaluations by outcome.
var ChallengesEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "steady",
	Name:      "challenges_evaluated_total",
	Help:      "Total challenge state transitions applied during evaluation.",
}, []string{"outcome"})

// TierUpgrades tracks group tier promotions.
var TierUpgrades = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "steady",
	Name:      "tier_upgrades_total",
	Help:      "Total group tier upgrades.",
})

// ─── HTTP API ───────────────────────────────────────────────────────────────

// RequestDuration tracks API request duration in seconds.
var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "steady",
	Name:      "http_request_duration_seconds",
	Help:      "API request duration in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route", "method", "status"})
