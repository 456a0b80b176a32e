// internal/dealintel/ratecard.go
package dealintel

import (
	"strings"

	"gradeup-workers/internal/models"
)

// Rate is one row of the deal-type rate card: a base amount, a per-follower
// multiplier and a bonus pool unlocked by a high GPA.
type Rate struct {
	Base         float64
	FollowerMult float64
	GPABonus     float64
}

// rateCard is keyed by deal type; unknown types use defaultRate. Adding a
// deal type is a single table edit.
var rateCard = map[models.DealType]Rate{
	models.DealTypeSocialPost:  {Base: 50, FollowerMult: 0.001, GPABonus: 50},
	models.DealTypeAppearance:  {Base: 200, FollowerMult: 0.0005, GPABonus: 75},
	models.DealTypeEndorsement: {Base: 500, FollowerMult: 0.002, GPABonus: 100},
	models.DealTypeAutograph:   {Base: 75, FollowerMult: 0.0003, GPABonus: 25},
	models.DealTypeCamp:        {Base: 300, FollowerMult: 0.0008, GPABonus: 75},
	models.DealTypeMerchandise: {Base: 250, FollowerMult: 0.0015, GPABonus: 100},
}

var defaultRate = Rate{Base: 100, FollowerMult: 0.0005, GPABonus: 50}

// RateFor looks up the rate row for a deal type, falling back to the
// default row for unmapped types.
func RateFor(dealType models.DealType) Rate {
	if r, ok := rateCard[dealType]; ok {
		return r
	}
	return defaultRate
}

// tierMultipliers maps scholar tiers to valuation multipliers. Unrecognized
// or absent tiers multiply by 1.0.
var tierMultipliers = map[models.ScholarTier]float64{
	models.TierPlatinum: 1.5,
	models.TierGold:     1.3,
	models.TierSilver:   1.15,
	models.TierBronze:   1.05,
}

func tierMultiplier(tier models.ScholarTier) float64 {
	if m, ok := tierMultipliers[tier]; ok {
		return m
	}
	return 1.0
}

// premiumSports are matched case-insensitively against the athlete's sport.
var premiumSports = map[string]bool{
	"football":           true,
	"men's basketball":   true,
	"women's basketball": true,
}

func isPremiumSport(sport string) bool {
	return premiumSports[strings.ToLower(strings.TrimSpace(sport))]
}
