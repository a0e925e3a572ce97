package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestCheckInMetrics(t *testing.T) {
	CheckIns.WithLabelValues("full").Inc()
	CheckIns.WithLabelValues("partial").Inc()
	CheckInsUndone.Inc()

	names := gatheredNames(t)
	for _, name := range []string{
		"steady_checkins_total",
		"steady_checkins_undone_total",
	} {
		if !names[name] {
			t.Errorf("metric %q not found", name)
		}
	}
}

func TestPointMetrics(t *testing.T) {
	PointsAwarded.WithLabelValues("CHECK_IN").Add(150000)
	PointsAwarded.WithLabelValues("BACKFILL").Add(42000)
	StreakBonuses.Inc()

	names := gatheredNames(t)
	if !names["steady_points_awarded_milli_total"] {
		t.Error("steady_points_awarded_milli_total not found")
	}
	if !names["steady_streak_bonuses_total"] {
		t.Error("steady_streak_bonuses_total not found")
	}
}

func TestChallengeMetrics(t *testing.T) {
	ChallengesEvaluated.WithLabelValues("activated").Inc()
	ChallengesEvaluated.WithLabelValues("succeeded").Inc()
	ChallengesEvaluated.WithLabelValues("failed").Inc()
	TierUpgrades.Inc()

	names := gatheredNames(t)
	if !names["steady_challenges_evaluated_total"] {
		t.Error("steady_challenges_evaluated_total not found")
	}
	if !names["steady_tier_upgrades_total"] {
		t.Error("steady_tier_upgrades_total not found")
	}
}

func TestRequestDuration(t *testing.T) {
	RequestDuration.WithLabelValues("/v1/checkins", "POST", "200").Observe(0.012)

	names := gatheredNames(t)
	if !names["steady_http_request_duration_seconds"] {
		t.Error("steady_http_request_duration_seconds not found")
	}
}

func TestAllMetricsGatherable(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}

	steadyMetrics := 0
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "steady_") {
			steadyMetrics++
		}
	}
	if steadyMetrics < 6 {
		t.Errorf("expected at least 6 steady_ metric families, got %d", steadyMetrics)
	}
}
