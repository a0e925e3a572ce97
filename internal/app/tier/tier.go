// Package tier maps a trailing group completion rate onto the discrete
// ladder Bronze → Silver → Gold → Platinum → Diamond I–V. Pure lookup,
// no state transitions of its own.
package tier

// Tier is one rung of the ladder.
type Tier struct {
	Name string `json:"name"`
	Min  int    `json:"min"` // inclusive completion-rate bound
	Max  int    `json:"max"` // inclusive
}

// Ladder is ordered lowest to highest. The Diamond tiers subdivide the top
// quintile so strong groups still have headroom to climb.
var Ladder = []Tier{
	{Name: "Bronze", Min: 0, Max: 39},
	{Name: "Silver", Min: 40, Max: 54},
	{Name: "Gold", Min: 55, Max: 69},
	{Name: "Platinum", Min: 70, Max: 79},
	{Name: "Diamond I", Min: 80, Max: 84},
	{Name: "Diamond II", Min: 85, Max: 89},
	{Name: "Diamond III", Min: 90, Max: 94},
	{Name: "Diamond IV", Min: 95, Max: 98},
	{Name: "Diamond V", Min: 99, Max: 100},
}

// TierFor returns the tier whose band contains the completion rate.
// Rates outside 0–100 are clamped first.
func TierFor(completionRate float64) Tier {
	rate := int(completionRate)
	if completionRate < 0 {
		rate = 0
	}
	if completionRate > 100 {
		rate = 100
	}
	for _, t := range Ladder {
		if rate >= t.Min && rate <= t.Max {
			return t
		}
	}
	return Ladder[0]
}

// position returns the ladder index of a tier name, -1 if unknown.
func position(name string) int {
	for i, t := range Ladder {
		if t.Name == name {
			return i
		}
	}
	return -1
}

// WasUpgraded reports whether newTier sits higher on the ladder than
// oldTier. A first assignment (unknown old name) counts as an upgrade.
func WasUpgraded(oldTier, newTier string) bool {
	oldPos, newPos := position(oldTier), position(newTier)
	if newPos < 0 {
		return false
	}
	return newPos > oldPos
}
