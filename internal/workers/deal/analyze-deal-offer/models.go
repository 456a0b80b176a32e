// internal/workers/deal/analyze-deal-offer/models.go
package analyzedealoffer

import "gradeup-workers/internal/models"

type Input struct {
	AthleteID      string                 `json:"athleteId"`
	Deal           models.DealOffer       `json:"deal"`
	AthleteProfile *models.AthleteProfile `json:"athleteProfile,omitempty"`
	BrandProfile   *models.BrandProfile   `json:"brandProfile,omitempty"`
	ActiveDeals    []models.DealSummary   `json:"activeDeals,omitempty"`
}

type Output struct {
	AthleteID string                 `json:"athleteId"`
	Valuation models.ValuationResult `json:"valuation"`
	Analysis  models.ScoreBreakdown  `json:"analysis"`
}
