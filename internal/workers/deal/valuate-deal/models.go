// internal/workers/deal/valuate-deal/models.go
package valuatedeal

import "gradeup-workers/internal/models"

type Input struct {
	AthleteID      string                 `json:"athleteId"`
	DealType       string                 `json:"dealType,omitempty"`
	AthleteProfile *models.AthleteProfile `json:"athleteProfile,omitempty"`
}

type Output struct {
	AthleteID string                            `json:"athleteId"`
	Valuation models.ValuationResult            `json:"valuation"`
	ByType    map[string]models.ValuationResult `json:"valuationByType,omitempty"`
}
