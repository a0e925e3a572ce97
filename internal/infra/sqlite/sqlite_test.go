package sqlite_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/steady-app/steady/internal/domain"
	"github.com/steady-app/steady/internal/infra/sqlite"
)

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var testTime = time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)

func seedGoal(t *testing.T, db *sqlite.DB, userID string) domain.Goal {
	t.Helper()
	g := domain.Goal{
		ID: uuid.NewString(), UserID: userID, Name: "read",
		Cadence: domain.CadenceDaily, DailyTarget: 1, Active: true,
		StreakFreezes: 1, CreatedAt: testTime,
	}
	if err := db.InsertGoal(g); err != nil {
		t.Fatalf("insert goal: %v", err)
	}
	return g
}

func checkin(g domain.Goal, dateKey, weekKey string, at time.Time) domain.CheckIn {
	return domain.CheckIn{
		ID: uuid.NewString(), GoalID: g.ID, UserID: g.UserID,
		Timestamp: at, LocalDateKey: dateKey, WeekKey: weekKey,
	}
}

func TestOpenTwice_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db.Close()

	db, err = sqlite.Open(dir)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	db.Close()
}

func TestGoalRoundTrip(t *testing.T) {
	db := testDB(t)
	g := domain.Goal{
		ID: uuid.NewString(), UserID: "u1", Name: "run",
		Cadence: domain.CadenceWeekly, WeeklyTarget: 3, Active: true,
		StreakFreezes: 2, CreatedAt: testTime,
	}
	if err := db.InsertGoal(g); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := db.GetGoal(g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Cadence != domain.CadenceWeekly || got.WeeklyTarget != 3 {
		t.Errorf("got cadence=%s target=%d, want WEEKLY/3", got.Cadence, got.WeeklyTarget)
	}
	if got.StreakFreezes != 2 {
		t.Errorf("freezes = %d, want 2", got.StreakFreezes)
	}

	if _, err := db.GetGoal("missing"); !errors.Is(err, domain.ErrGoalNotFound) {
		t.Errorf("missing goal err = %v, want ErrGoalNotFound", err)
	}
}

func TestRecordCheckIn_AtomicWithLedger(t *testing.T) {
	db := testDB(t)
	g := seedGoal(t, db, "u1")

	ci := checkin(g, "2025-07-10", "2025-W28", testTime)
	award := &domain.PointLedgerEntry{
		UserID: "u1", GoalID: g.ID, WeekKey: "2025-W28",
		PointsMilli: 150000, Reason: domain.ReasonCheckIn,
		SourceID: ci.ID, CreatedAt: testTime,
	}
	if err := db.RecordCheckIn(ci, award); err != nil {
		t.Fatalf("record: %v", err)
	}

	earned, err := db.WeekEarnedMilli("u1", "2025-W28")
	if err != nil || earned != 150000 {
		t.Errorf("week earned = %d (%v), want 150000", earned, err)
	}

	agg, err := db.GetAggregates("u1")
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	if agg.PointsWeekMilli != 150000 || agg.PointsLifetimeMilli != 150000 {
		t.Errorf("aggregates = %+v, want 150000/150000", agg)
	}
}

func TestLedger_IdempotentPerSource(t *testing.T) {
	db := testDB(t)
	g := seedGoal(t, db, "u1")
	ci := checkin(g, "2025-07-10", "2025-W28", testTime)
	if err := db.RecordCheckIn(ci, nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	award := domain.PointLedgerEntry{
		UserID: "u1", GoalID: g.ID, WeekKey: "2025-W28",
		PointsMilli: 100000, Reason: domain.ReasonCheckIn,
		SourceID: ci.ID, CreatedAt: testTime,
	}
	// Applying the same source twice must award once.
	if err := db.UpgradePartial(ci.ID, &award); !errors.Is(err, domain.ErrAlreadyFull) {
		t.Fatalf("upgrade full checkin err = %v, want ErrAlreadyFull", err)
	}

	ci2 := checkin(g, "2025-07-10", "2025-W28", testTime.Add(time.Hour))
	if err := db.RecordCheckIn(ci2, &award); err != nil {
		t.Fatalf("record 2: %v", err)
	}
	if err := db.ApplyBackfill(nil, nil, &award); err != nil {
		t.Fatalf("replay award: %v", err)
	}

	earned, _ := db.WeekEarnedMilli("u1", "2025-W28")
	if earned != 100000 {
		t.Errorf("earned = %d, want 100000 (single award)", earned)
	}
	agg, _ := db.GetAggregates("u1")
	if agg.PointsLifetimeMilli != 100000 {
		t.Errorf("lifetime = %d, want 100000", agg.PointsLifetimeMilli)
	}
}

func TestAggregates_WeekRollover(t *testing.T) {
	db := testDB(t)
	g := seedGoal(t, db, "u1")

	first := checkin(g, "2025-07-03", "2025-W27", testTime.AddDate(0, 0, -7))
	err := db.RecordCheckIn(first, &domain.PointLedgerEntry{
		UserID: "u1", GoalID: g.ID, WeekKey: "2025-W27",
		PointsMilli: 200000, Reason: domain.ReasonCheckIn,
		SourceID: first.ID, CreatedAt: testTime,
	})
	if err != nil {
		t.Fatalf("week 27 record: %v", err)
	}

	second := checkin(g, "2025-07-10", "2025-W28", testTime)
	err = db.RecordCheckIn(second, &domain.PointLedgerEntry{
		UserID: "u1", GoalID: g.ID, WeekKey: "2025-W28",
		PointsMilli: 50000, Reason: domain.ReasonCheckIn,
		SourceID: second.ID, CreatedAt: testTime,
	})
	if err != nil {
		t.Fatalf("week 28 record: %v", err)
	}

	agg, _ := db.GetAggregates("u1")
	if agg.PointsWeekKey != "2025-W28" || agg.PointsWeekMilli != 50000 {
		t.Errorf("week bucket = %s/%d, want 2025-W28/50000", agg.PointsWeekKey, agg.PointsWeekMilli)
	}
	if agg.PointsLifetimeMilli != 250000 {
		t.Errorf("lifetime = %d, want 250000", agg.PointsLifetimeMilli)
	}

	// A backfill award into the older week leaves the week bucket alone.
	third := checkin(g, "2025-07-02", "2025-W27", testTime.AddDate(0, 0, -8))
	err = db.RecordCheckIn(third, &domain.PointLedgerEntry{
		UserID: "u1", GoalID: g.ID, WeekKey: "2025-W27",
		PointsMilli: 10000, Reason: domain.ReasonBackfill,
		SourceID: third.ID, CreatedAt: testTime,
	})
	if err != nil {
		t.Fatalf("backfill record: %v", err)
	}
	agg, _ = db.GetAggregates("u1")
	if agg.PointsWeekMilli != 50000 {
		t.Errorf("week bucket after backfill = %d, want 50000", agg.PointsWeekMilli)
	}
	if agg.PointsLifetimeMilli != 260000 {
		t.Errorf("lifetime after backfill = %d, want 260000", agg.PointsLifetimeMilli)
	}
}

func TestRebuildAggregates_MatchesLedger(t *testing.T) {
	db := testDB(t)
	g := seedGoal(t, db, "u1")

	for i, milli := range []int64{120000, 80000, 40000} {
		ci := checkin(g, "2025-07-10", "2025-W28", testTime.Add(time.Duration(i)*time.Minute))
		err := db.RecordCheckIn(ci, &domain.PointLedgerEntry{
			UserID: "u1", GoalID: g.ID, WeekKey: "2025-W28",
			PointsMilli: milli, Reason: domain.ReasonCheckIn,
			SourceID: ci.ID, CreatedAt: testTime,
		})
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	rebuilt, err := db.RebuildAggregates("u1", "2025-W28")
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if rebuilt.PointsWeekMilli != 240000 || rebuilt.PointsLifetimeMilli != 240000 {
		t.Errorf("rebuilt = %+v, want 240000/240000", rebuilt)
	}

	cached, _ := db.GetAggregates("u1")
	if cached != rebuilt {
		t.Errorf("cache %+v diverges from rebuild %+v", cached, rebuilt)
	}
}

func TestUndoLastCheckIn_RemovesNewest(t *testing.T) {
	db := testDB(t)
	g := seedGoal(t, db, "u1")

	older := checkin(g, "2025-07-10", "2025-W28", testTime)
	newer := checkin(g, "2025-07-10", "2025-W28", testTime.Add(2*time.Hour))
	for _, ci := range []domain.CheckIn{older, newer} {
		if err := db.RecordCheckIn(ci, nil); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	removed, err := db.UndoLastCheckIn(g.ID, "2025-07-10")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if removed.ID != newer.ID {
		t.Errorf("removed %s, want the newest %s", removed.ID, newer.ID)
	}

	count, _ := db.CountForDay(g.ID, "2025-07-10")
	if count != 1 {
		t.Errorf("count after undo = %d, want 1", count)
	}

	if _, err := db.UndoLastCheckIn(g.ID, "2025-07-09"); !errors.Is(err, domain.ErrNothingToUndo) {
		t.Errorf("empty-day undo err = %v, want ErrNothingToUndo", err)
	}
}

func TestDeleteGoal_CascadesCheckIns(t *testing.T) {
	db := testDB(t)
	g := seedGoal(t, db, "u1")
	if err := db.RecordCheckIn(checkin(g, "2025-07-10", "2025-W28", testTime), nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := db.DeleteGoal(g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	count, err := db.CountForDay(g.ID, "2025-07-10")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("check-ins survived goal deletion: %d", count)
	}
}

func TestCountsByDay_ExcludesPartials(t *testing.T) {
	db := testDB(t)
	g := seedGoal(t, db, "u1")

	full := checkin(g, "2025-07-10", "2025-W28", testTime)
	partial := checkin(g, "2025-07-09", "2025-W28", testTime.AddDate(0, 0, -1))
	partial.IsPartial = true
	for _, ci := range []domain.CheckIn{full, partial} {
		if err := db.RecordCheckIn(ci, nil); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	counts, err := db.CountsByDay(g.ID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts["2025-07-10"] != 1 {
		t.Errorf("full day count = %d, want 1", counts["2025-07-10"])
	}
	if counts["2025-07-09"] != 0 {
		t.Errorf("partial day count = %d, want 0 until upgraded", counts["2025-07-09"])
	}
}
