// internal/dealintel/valuation.go
package dealintel

import (
	"math"

	"gradeup-workers/internal/models"
)

// Valuate computes the fair-market-value range for an athlete and deal type.
// It never fails: unknown deal types use the default rate row and a
// zero-attribute athlete simply yields the base rate.
//
// The multipliers apply in a fixed order (GPA bonus, scholar tier, premium
// sport, full verification, deal history). Reordering them changes the
// rounded output, so the sequence below is load-bearing.
func Valuate(athlete *models.AthleteProfile, dealType models.DealType) models.ValuationResult {
	rate := RateFor(dealType)

	typical := rate.Base + float64(athlete.TotalFollowers)*rate.FollowerMult

	if athlete.GPA >= 3.5 {
		typical += rate.GPABonus * (athlete.GPA / 4.0)
	}

	typical *= tierMultiplier(athlete.ScholarTier)

	if isPremiumSport(athlete.Sport) {
		typical *= 1.25
	}

	if athlete.FullyVerified() {
		typical *= 1.1
	}

	switch {
	case athlete.CompletedDeals >= 10:
		typical *= 1.15
	case athlete.CompletedDeals >= 5:
		typical *= 1.05
	}

	// Min and max derive from the rounded typical, not the raw float.
	rounded := int(math.Round(typical))
	return models.ValuationResult{
		Min:     int(math.Round(float64(rounded) * 0.7)),
		Typical: rounded,
		Max:     int(math.Round(float64(rounded) * 1.4)),
	}
}
