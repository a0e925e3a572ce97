package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/steady-app/steady/internal/api"
	"github.com/steady-app/steady/internal/app/challenge"
	"github.com/steady-app/steady/internal/app/groups"
	"github.com/steady-app/steady/internal/app/tracker"
	"github.com/steady-app/steady/internal/infra/sqlite"
)

var apiNow = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	now := func() time.Time { return apiNow }
	tr := tracker.New(db)
	tr.SetClock(now)
	ch := challenge.NewService(db)
	ch.SetClock(now)
	gr := groups.NewService(db, ch)
	gr.SetClock(now)

	return api.NewServer(tr, gr, ch).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Steady-User", user)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	h := testHandler(t)
	w := doJSON(t, h, "GET", "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", w.Code)
	}
}

func TestGoalLifecycle(t *testing.T) {
	h := testHandler(t)

	w := doJSON(t, h, "POST", "/api/v1/goals", "u1", map[string]interface{}{
		"name": "meditate", "cadence": "DAILY", "daily_target": 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create goal status = %d: %s", w.Code, w.Body.String())
	}
	var goal struct {
		ID string `json:"id"`
	}
	decode(t, w, &goal)
	if goal.ID == "" {
		t.Fatal("created goal has no id")
	}

	w = doJSON(t, h, "GET", "/api/v1/goals?active=true", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list []json.RawMessage
	decode(t, w, &list)
	if len(list) != 1 {
		t.Errorf("list returned %d goals, want 1", len(list))
	}

	// Bad cadence is a 400, not a 500.
	w = doJSON(t, h, "POST", "/api/v1/goals", "u1", map[string]interface{}{
		"name": "x", "cadence": "HOURLY",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad cadence status = %d, want 400", w.Code)
	}

	w = doJSON(t, h, "POST", "/api/v1/goals/"+goal.ID+"/archive", "u1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("archive status = %d, want 200", w.Code)
	}
}

func TestCheckInFlow(t *testing.T) {
	h := testHandler(t)

	w := doJSON(t, h, "POST", "/api/v1/goals", "u1", map[string]interface{}{
		"name": "read", "cadence": "DAILY", "daily_target": 1,
	})
	var goal struct {
		ID string `json:"id"`
	}
	decode(t, w, &goal)

	w = doJSON(t, h, "POST", "/api/v1/goals/"+goal.ID+"/checkins", "u1", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("check-in status = %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		Award struct {
			PointsMilli int64 `json:"points_milli"`
		} `json:"award"`
		DayComplete bool `json:"day_complete"`
	}
	decode(t, w, &res)
	if res.Award.PointsMilli <= 0 || !res.DayComplete {
		t.Errorf("check-in = %+v, want positive award and complete day", res)
	}

	// The day is full: a second check-in conflicts.
	w = doJSON(t, h, "POST", "/api/v1/goals/"+goal.ID+"/checkins", "u1", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", w.Code)
	}

	// Another user cannot touch the goal.
	w = doJSON(t, h, "POST", "/api/v1/goals/"+goal.ID+"/checkins", "intruder", nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign user status = %d, want 403", w.Code)
	}

	w = doJSON(t, h, "DELETE", "/api/v1/goals/"+goal.ID+"/checkins/last", "u1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("undo status = %d, want 200", w.Code)
	}
	w = doJSON(t, h, "DELETE", "/api/v1/goals/"+goal.ID+"/checkins/last", "u1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("empty undo status = %d, want 404", w.Code)
	}
}

func TestBackfillEndpoint(t *testing.T) {
	h := testHandler(t)

	w := doJSON(t, h, "POST", "/api/v1/goals", "u1", map[string]interface{}{
		"name": "run", "cadence": "DAILY", "daily_target": 1,
	})
	var goal struct {
		ID string `json:"id"`
	}
	decode(t, w, &goal)

	w = doJSON(t, h, "PUT", "/api/v1/goals/"+goal.ID+"/days/2025-07-08", "u1",
		map[string]int{"count": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("backfill status = %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		Inserted int `json:"inserted"`
	}
	decode(t, w, &res)
	if res.Inserted != 1 {
		t.Errorf("inserted = %d, want 1", res.Inserted)
	}

	w = doJSON(t, h, "PUT", "/api/v1/goals/"+goal.ID+"/days/2025-07-11", "u1",
		map[string]int{"count": 1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("future backfill status = %d, want 400", w.Code)
	}
}

func TestStreaksAndPoints(t *testing.T) {
	h := testHandler(t)

	w := doJSON(t, h, "POST", "/api/v1/goals", "u1", map[string]interface{}{
		"name": "write", "cadence": "DAILY", "daily_target": 1,
	})
	var goal struct {
		ID string `json:"id"`
	}
	decode(t, w, &goal)
	doJSON(t, h, "POST", "/api/v1/goals/"+goal.ID+"/checkins", "u1", nil)

	w = doJSON(t, h, "GET", "/api/v1/goals/"+goal.ID+"/streaks", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("streaks status = %d", w.Code)
	}
	var sum struct {
		Current int    `json:"current_streak"`
		Message string `json:"message"`
	}
	decode(t, w, &sum)
	if sum.Current != 1 || sum.Message == "" {
		t.Errorf("summary = %+v, want streak 1 with a message", sum)
	}

	w = doJSON(t, h, "GET", "/api/v1/points", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("points status = %d", w.Code)
	}
	var agg struct {
		WeekMilli int64 `json:"points_week_milli"`
	}
	decode(t, w, &agg)
	if agg.WeekMilli <= 0 {
		t.Errorf("week milli = %d, want > 0", agg.WeekMilli)
	}

	w = doJSON(t, h, "GET", "/api/v1/points/ledger", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ledger status = %d", w.Code)
	}
	var entries []json.RawMessage
	decode(t, w, &entries)
	if len(entries) != 1 {
		t.Errorf("ledger rows = %d, want 1", len(entries))
	}
}

func TestGroupChallengeFlow(t *testing.T) {
	h := testHandler(t)

	w := doJSON(t, h, "POST", "/api/v1/groups", "alice", map[string]string{"name": "morning crew"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create group status = %d: %s", w.Code, w.Body.String())
	}
	var group struct {
		ID string `json:"id"`
	}
	decode(t, w, &group)

	w = doJSON(t, h, "POST", "/api/v1/groups/"+group.ID+"/join", "bob", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("join status = %d", w.Code)
	}

	w = doJSON(t, h, "POST", "/api/v1/groups/"+group.ID+"/challenges", "alice", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create challenge status = %d: %s", w.Code, w.Body.String())
	}
	var ch struct {
		ID      string `json:"id"`
		WeekKey string `json:"week_key"`
		Status  string `json:"status"`
	}
	decode(t, w, &ch)
	if ch.WeekKey != "2025-W29" {
		t.Errorf("challenge week = %s, want next week 2025-W29", ch.WeekKey)
	}
	if ch.Status != "PENDING" {
		t.Errorf("challenge status = %s, want PENDING", ch.Status)
	}

	// Second member's approval completes the quorum.
	w = doJSON(t, h, "POST", "/api/v1/challenges/"+ch.ID+"/approve", "bob", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("approve status = %d: %s", w.Code, w.Body.String())
	}
	var approved struct {
		Status string `json:"status"`
	}
	decode(t, w, &approved)
	if approved.Status != "SCHEDULED" {
		t.Errorf("post-quorum status = %s, want SCHEDULED", approved.Status)
	}

	// Approving again conflicts.
	w = doJSON(t, h, "POST", fmt.Sprintf("/api/v1/challenges/%s/approve", ch.ID), "bob", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("re-approve status = %d, want 409", w.Code)
	}

	w = doJSON(t, h, "GET", "/api/v1/groups/"+group.ID+"/challenges/2025-W29", "alice", nil)
	if w.Code != http.StatusOK {
		t.Errorf("challenge lookup status = %d, want 200", w.Code)
	}

	w = doJSON(t, h, "POST", "/api/v1/groups/"+group.ID+"/tier/refresh", "alice", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tier refresh status = %d", w.Code)
	}
	var tierStatus struct {
		Tier struct {
			Name string `json:"name"`
		} `json:"tier"`
	}
	decode(t, w, &tierStatus)
	if tierStatus.Tier.Name == "" {
		t.Error("tier refresh returned no tier name")
	}
}
