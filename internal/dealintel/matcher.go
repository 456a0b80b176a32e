// internal/dealintel/matcher.go
package dealintel

import (
	"fmt"
	"sort"

	"gradeup-workers/internal/models"
)

// DefaultMatchLimit caps matcher output when the caller passes limit <= 0.
const DefaultMatchLimit = 10

// MatchBrands ranks candidate brands against an athlete profile, best
// first, truncated to limit. Candidates whose declared minimum GPA or
// follower requirement the athlete fails are excluded outright rather than
// penalized.
func MatchBrands(athlete *models.AthleteProfile, candidates []models.BrandProfile, limit int) []models.BrandMatch {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}

	matches := make([]models.BrandMatch, 0, len(candidates))
	for _, brand := range candidates {
		if brand.MinGPA > 0 && athlete.GPA < brand.MinGPA {
			continue
		}
		if brand.MinFollowers > 0 && athlete.TotalFollowers < brand.MinFollowers {
			continue
		}
		matches = append(matches, matchBrand(athlete, brand))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func matchBrand(athlete *models.AthleteProfile, brand models.BrandProfile) models.BrandMatch {
	score := 50
	var reasons []string

	if industryMatches(brand.Industry, athlete.Major) {
		score += 25
		reasons = append(reasons, fmt.Sprintf("%s brands fit a %s major", brand.Industry, athlete.Major))
	}
	if athlete.GPA >= 3.5 {
		score += 10
		reasons = append(reasons, fmt.Sprintf("strong academics (%.2f GPA)", athlete.GPA))
	}
	if athlete.EnrollmentVerified && athlete.SportVerified {
		score += 10
		reasons = append(reasons, "verified enrollment and sport")
	}
	if athlete.TotalFollowers >= 10000 {
		score += 10
		reasons = append(reasons, fmt.Sprintf("%d followers across platforms", athlete.TotalFollowers))
	}

	if len(reasons) == 0 {
		reasons = []string{"open to partnerships in your area"}
	}

	return models.BrandMatch{
		BrandID:        brand.ID,
		BrandName:      brand.Name,
		Score:          clamp(score),
		Reasons:        reasons,
		PotentialValue: Valuate(athlete, preferredDealType(brand)),
	}
}

// preferredDealType picks the brand's first declared deal type; brands
// without a preference get the default rate row.
func preferredDealType(brand models.BrandProfile) models.DealType {
	if len(brand.PreferredTypes) > 0 {
		return brand.PreferredTypes[0]
	}
	return models.DealTypeOther
}
