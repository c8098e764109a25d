package models

// Tier buckets a propensity score into an outreach priority band.
type Tier string

const (
	TierHot  Tier = "hot"  // [75, 100]
	TierWarm Tier = "warm" // [50, 75)
	TierCold Tier = "cold" // [25, 50)
	TierIce  Tier = "ice"  // [0, 25)
)

// IsValid reports whether the tier is a known band.
func (t Tier) IsValid() bool {
	switch t {
	case TierHot, TierWarm, TierCold, TierIce:
		return true
	}
	return false
}

// TierThresholds holds the lower bounds of the hot/warm/cold bands. Anything
// below Cold is ice.
type TierThresholds struct {
	Hot  int `json:"hot" validate:"gte=0,lte=100"`
	Warm int `json:"warm" validate:"gte=0,lte=100"`
	Cold int `json:"cold" validate:"gte=0,lte=100"`
}

// DefaultTierThresholds returns the standard 75/50/25 bands.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{Hot: 75, Warm: 50, Cold: 25}
}

// TierFor maps a score onto its band.
func (t TierThresholds) TierFor(score int) Tier {
	switch {
	case score >= t.Hot:
		return TierHot
	case score >= t.Warm:
		return TierWarm
	case score >= t.Cold:
		return TierCold
	default:
		return TierIce
	}
}
