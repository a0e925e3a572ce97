package tier_test

import (
	"testing"

	"github.com/steady-app/steady/internal/app/tier"
)

func TestLadderCoversFullRange(t *testing.T) {
	// Bands must be contiguous from 0 to 100 with no gaps or overlaps.
	next := 0
	for _, band := range tier.Ladder {
		if band.Min != next {
			t.Errorf("%s starts at %d, want %d", band.Name, band.Min, next)
		}
		if band.Max < band.Min {
			t.Errorf("%s has inverted band [%d,%d]", band.Name, band.Min, band.Max)
		}
		next = band.Max + 1
	}
	if next != 101 {
		t.Errorf("ladder ends at %d, want 100", next-1)
	}
}

func TestTierFor(t *testing.T) {
	cases := []struct {
		rate float64
		want string
	}{
		{0, "Bronze"},
		{39.9, "Bronze"},
		{40, "Silver"},
		{68, "Gold"},
		{75, "Platinum"},
		{82, "Diamond I"},
		{100, "Diamond V"},
		{-5, "Bronze"},     // clamped
		{140, "Diamond V"}, // clamped
	}
	for _, c := range cases {
		if got := tier.TierFor(c.rate); got.Name != c.want {
			t.Errorf("TierFor(%v) = %s, want %s", c.rate, got.Name, c.want)
		}
	}
}

func TestWasUpgraded(t *testing.T) {
	if !tier.WasUpgraded("Silver", "Gold") {
		t.Error("Silver→Gold is an upgrade")
	}
	if tier.WasUpgraded("Gold", "Silver") {
		t.Error("Gold→Silver is not an upgrade")
	}
	if tier.WasUpgraded("Gold", "Gold") {
		t.Error("same tier is not an upgrade")
	}
	if !tier.WasUpgraded("", "Bronze") {
		t.Error("first assignment counts as an upgrade")
	}
}
