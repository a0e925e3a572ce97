// Package api provides the HTTP server for Steady. It exposes the habit
// tracker, points, group and challenge services as a JSON API. Auth is out
// of scope: callers identify themselves with the X-Steady-User header.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/steady-app/steady/internal/app/challenge"
	"github.com/steady-app/steady/internal/app/groups"
	"github.com/steady-app/steady/internal/app/tracker"
	"github.com/steady-app/steady/internal/domain"
	"github.com/steady-app/steady/internal/health"
	"github.com/steady-app/steady/internal/infra/metrics"
)

// Server is the Steady HTTP API server.
type Server struct {
	tracker    *tracker.Service
	groups     *groups.Service
	challenges *challenge.Service

	health *health.Checker

	defaultTZ      string
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(t *tracker.Service, g *groups.Service, c *challenge.Service) *Server {
	return &Server{tracker: t, groups: g, challenges: c, defaultTZ: "UTC"}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth attaches a health checker whose results back /health.
func (s *Server) SetHealth(h *health.Checker) { s.health = h }

// SetDefaultTimezone sets the timezone used when a request carries none.
func (s *Server) SetDefaultTimezone(tz string) {
	if tz != "" {
		s.defaultTZ = tz
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)
	if s.metricsEnabled {
		r.Use(requestMetrics)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.health == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		status, code := "ok", http.StatusOK
		if !s.health.IsHealthy() {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": s.health.Statuses(),
		})
	})
	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": "0.1.0"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/goals", s.handleCreateGoal)
		r.Get("/goals", s.handleListGoals)
		r.Post("/goals/{goalID}/archive", s.handleArchiveGoal)
		r.Delete("/goals/{goalID}", s.handleDeleteGoal)

		r.Post("/goals/{goalID}/checkins", s.handleCheckIn)
		r.Delete("/goals/{goalID}/checkins/last", s.handleUndo)
		r.Post("/goals/{goalID}/checkins/upgrade", s.handleUpgradePartial)
		r.Put("/goals/{goalID}/days/{dateKey}", s.handleSetDayCount)
		r.Get("/goals/{goalID}/streaks", s.handleStreaks)

		r.Get("/points", s.handlePoints)
		r.Get("/points/ledger", s.handleLedger)
		r.Post("/points/rebuild", s.handleRebuildPoints)

		r.Post("/groups", s.handleCreateGroup)
		r.Get("/groups/{groupID}", s.handleGetGroup)
		r.Post("/groups/{groupID}/join", s.handleJoinGroup)
		r.Get("/groups/{groupID}/members", s.handleRoster)
		r.Post("/groups/{groupID}/tier/refresh", s.handleRefreshTier)

		r.Post("/groups/{groupID}/challenges", s.handleCreateChallenge)
		r.Get("/groups/{groupID}/challenges/{weekKey}", s.handleChallengeForWeek)
		r.Post("/groups/{groupID}/challenges/evaluate", s.handleEvaluate)
		r.Post("/challenges/{challengeID}/approve", s.handleApprove)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Request plumbing ───────────────────────────────────────────────────────

// userID pulls the caller identity from the X-Steady-User header.
func userID(r *http.Request) string {
	return r.Header.Get("X-Steady-User")
}

// timezone resolves the request timezone: ?tz= first, then the
// X-Steady-Timezone header, then the server default.
func (s *Server) timezone(r *http.Request) string {
	if tz := r.URL.Query().Get("tz"); tz != "" {
		return tz
	}
	if tz := r.Header.Get("X-Steady-Timezone"); tz != "" {
		return tz
	}
	return s.defaultTZ
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func queryInt(r *http.Request, key, fallback string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		raw = fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps sentinel errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrGoalNotFound),
		errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrChallengeNotFound),
		errors.Is(err, domain.ErrNothingToUndo):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotGoalOwner),
		errors.Is(err, domain.ErrNotGroupAdmin),
		errors.Is(err, domain.ErrNotGroupMember):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrDailyTargetReached),
		errors.Is(err, domain.ErrChallengeExists),
		errors.Is(err, domain.ErrDuplicateApproval),
		errors.Is(err, domain.ErrAlreadyFull),
		errors.Is(err, domain.ErrChallengeNotOpen),
		errors.Is(err, domain.ErrGoalInactive):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCadence),
		errors.Is(err, domain.ErrInvalidTarget),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidThreshold),
		errors.Is(err, domain.ErrInvalidDateKey),
		errors.Is(err, domain.ErrFutureDate),
		errors.Is(err, domain.ErrCountOutOfRange),
		errors.Is(err, domain.ErrPartialMultiTarget),
		errors.Is(err, domain.ErrUnknownTimezone),
		errors.Is(err, domain.ErrGroupTooSmall):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Steady-User, X-Steady-Timezone")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestMetrics records per-route latency with the final status code.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
