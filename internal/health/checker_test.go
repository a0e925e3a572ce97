package health

import (
	"context"
	"testing"

	"github.com/steady-app/steady/internal/infra/sqlite"
)

func TestChecker_AllHealthy(t *testing.T) {
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	c := NewChecker(db, dir, "UTC")
	c.runAll(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("got %d statuses, want 3", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %s unhealthy: %s", s.Name, s.Error)
		}
	}
	if !c.IsHealthy() {
		t.Error("IsHealthy() = false, want true")
	}
}

func TestChecker_BadTimezone(t *testing.T) {
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	c := NewChecker(db, dir, "Mars/Olympus")
	c.runAll(context.Background())

	if c.IsHealthy() {
		t.Error("IsHealthy() = true with an unresolvable timezone")
	}
	var found bool
	for _, s := range c.Statuses() {
		if s.Name == "timezone" && !s.Healthy && s.Error != "" {
			found = true
		}
	}
	if !found {
		t.Error("timezone check did not report the failure")
	}
}

func TestChecker_MissingDataDir(t *testing.T) {
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	c := NewChecker(db, dir+"/nope", "UTC")
	c.runAll(context.Background())

	if c.IsHealthy() {
		t.Error("IsHealthy() = true with a missing data dir")
	}
}
