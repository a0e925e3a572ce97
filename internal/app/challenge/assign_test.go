package challenge_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/steady-app/steady/internal/app/challenge"
)

func members(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func TestSplitTeams_EvenAndOdd(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	teams := challenge.SplitTeams(members(6), r)
	if len(teams) != 2 || len(teams[0]) != 3 || len(teams[1]) != 3 {
		t.Fatalf("even split = %d/%d, want 3/3", len(teams[0]), len(teams[1]))
	}

	// Odd roster: first team takes the extra member.
	teams = challenge.SplitTeams(members(5), r)
	if len(teams[0]) != 3 || len(teams[1]) != 2 {
		t.Fatalf("odd split = %d/%d, want 3/2", len(teams[0]), len(teams[1]))
	}
}

func TestSplitTeams_EveryMemberAssignedOnce(t *testing.T) {
	in := members(9)
	teams := challenge.SplitTeams(in, rand.New(rand.NewSource(7)))

	var all []string
	all = append(all, teams[0]...)
	all = append(all, teams[1]...)
	sort.Strings(all)

	want := members(9)
	sort.Strings(want)
	if len(all) != len(want) {
		t.Fatalf("assigned %d members, want %d", len(all), len(want))
	}
	for i := range all {
		if all[i] != want[i] {
			t.Errorf("assignment mismatch at %d: %s vs %s", i, all[i], want[i])
		}
	}
}

func TestSplitTeams_DeterministicForSeed(t *testing.T) {
	a := challenge.SplitTeams(members(8), rand.New(rand.NewSource(99)))
	b := challenge.SplitTeams(members(8), rand.New(rand.NewSource(99)))
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("same seed produced different assignments")
			}
		}
	}
}

func TestPairDuos_OddRosterGetsSolo(t *testing.T) {
	duos := challenge.PairDuos(members(5), rand.New(rand.NewSource(3)))
	if len(duos) != 3 {
		t.Fatalf("got %d duos, want 3", len(duos))
	}
	if len(duos[0]) != 2 || len(duos[1]) != 2 || len(duos[2]) != 1 {
		t.Errorf("duo sizes = %d,%d,%d, want 2,2,1",
			len(duos[0]), len(duos[1]), len(duos[2]))
	}
}

func TestPairDuos_InputUntouched(t *testing.T) {
	in := members(4)
	challenge.PairDuos(in, rand.New(rand.NewSource(1)))
	for i, m := range members(4) {
		if in[i] != m {
			t.Fatal("input slice was mutated by shuffling")
		}
	}
}
