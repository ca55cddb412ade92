// Package league classifies knowledge points into league tiers.
//
// A tier is never stored. It is derived from the current points every time it
// is needed, so a points update moves a player between leagues immediately.
package league

// Tier is one of the five ordered leagues.
type Tier string

const (
	Bronze   Tier = "Bronze"
	Silver   Tier = "Silver"
	Gold     Tier = "Gold"
	Diamond  Tier = "Diamond"
	Platinum Tier = "Platinum"
)

// threshold is the inclusive lower bound of a tier.
type threshold struct {
	min  int
	tier Tier
}

// thresholds is ordered from highest to lowest; the first match wins.
var thresholds = []threshold{
	{1000, Platinum},
	{600, Diamond},
	{300, Gold},
	{100, Silver},
}

// Classify maps a points value to its tier. It is total: any integer,
// negative included, yields exactly one tier.
func Classify(points int) Tier {
	for _, t := range thresholds {
		if points >= t.min {
			return t.tier
		}
	}
	return Bronze
}

// Rank returns the tier's position, Bronze being 0 and Platinum 4.
// Unknown tiers rank -1.
func (t Tier) Rank() int {
	switch t {
	case Bronze:
		return 0
	case Silver:
		return 1
	case Gold:
		return 2
	case Diamond:
		return 3
	case Platinum:
		return 4
	}
	return -1
}

// Bounds returns the inclusive lower bound and the exclusive upper bound of
// the tier. Platinum has no upper bound and reports bounded=false.
func (t Tier) Bounds() (lower int, upper int, bounded bool) {
	switch t {
	case Bronze:
		return 0, 100, true
	case Silver:
		return 100, 300, true
	case Gold:
		return 300, 600, true
	case Diamond:
		return 600, 1000, true
	case Platinum:
		return 1000, 0, false
	}
	return 0, 0, false
}

func (t Tier) String() string {
	return string(t)
}

// Tiers lists every tier from lowest to highest.
func Tiers() []Tier {
	return []Tier{Bronze, Silver, Gold, Diamond, Platinum}
}
