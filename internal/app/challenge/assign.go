// Package challenge implements the weekly group challenge state machine:
// PENDING → SCHEDULED → ACTIVE → {SUCCEEDED | FAILED}, with quorum-based
// approval and randomized team/duo assignment frozen at creation.
package challenge

import "math/rand"

// ─── Randomized assignment ──────────────────────────────────────────────────
// Pure given the random source; tests inject a seeded *rand.Rand.

// SplitTeams partitions member ids into two random halves. The first
// ⌈n/2⌉ shuffled members form team one.
func SplitTeams(members []string, r *rand.Rand) [][]string {
	shuffled := shuffle(members, r)
	half := (len(shuffled) + 1) / 2
	return [][]string{shuffled[:half], shuffled[half:]}
}

// PairDuos randomly pairs member ids. An odd roster leaves one solo "duo"
// of a single member at the end.
func PairDuos(members []string, r *rand.Rand) [][]string {
	shuffled := shuffle(members, r)
	var duos [][]string
	for i := 0; i < len(shuffled); i += 2 {
		end := i + 2
		if end > len(shuffled) {
			end = len(shuffled)
		}
		duos = append(duos, shuffled[i:end])
	}
	return duos
}

// shuffle returns a Fisher–Yates shuffled copy, leaving the input alone.
func shuffle(members []string, r *rand.Rand) []string {
	out := make([]string, len(members))
	copy(out, members)
	r.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
