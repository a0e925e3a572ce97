package streak

import "fmt"

// Tone buckets the soft-failure messaging. The boundaries are product
// policy: ≥80 celebrates, ≥50 encourages, anything above zero supports,
// zero prompts a restart.
type Tone string

const (
	ToneCelebratory Tone = "celebratory"
	ToneEncouraging Tone = "encouraging"
	ToneSupportive  Tone = "supportive"
	ToneRestart     Tone = "restart"
)

// ToneFor maps a consistency percentage to its messaging tone.
func ToneFor(consistencyPct int) Tone {
	switch {
	case consistencyPct >= 80:
		return ToneCelebratory
	case consistencyPct >= 50:
		return ToneEncouraging
	case consistencyPct > 0:
		return ToneSupportive
	default:
		return ToneRestart
	}
}

// Encouragement renders a user-facing message for the given consistency
// percentage and recent completion count. Wording is freely localizable;
// only the tone boundaries are load-bearing.
func Encouragement(consistencyPct, recentCompletions, windowDays int) (Tone, string) {
	tone := ToneFor(consistencyPct)
	switch tone {
	case ToneCelebratory:
		return tone, fmt.Sprintf("On fire: %d%% consistent. Keep the run alive!", consistencyPct)
	case ToneEncouraging:
		return tone, fmt.Sprintf("Solid work: %d of the last %d days. You're building the habit.", recentCompletions, windowDays)
	case ToneSupportive:
		return tone, fmt.Sprintf("%d days in the last %d still count. Pick it back up today.", recentCompletions, windowDays)
	default:
		return tone, "A fresh start begins with one check-in. Today works."
	}
}
