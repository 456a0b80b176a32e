// internal/workers/deal/recommend-brands/models.go
package recommendbrands

import "gradeup-workers/internal/models"

type Input struct {
	AthleteID      string                 `json:"athleteId"`
	Limit          int                    `json:"limit,omitempty"`
	Industry       string                 `json:"industry,omitempty"`
	AthleteProfile *models.AthleteProfile `json:"athleteProfile,omitempty"`
	Candidates     []models.BrandProfile  `json:"candidates,omitempty"`
}

type Output struct {
	AthleteID string              `json:"athleteId"`
	Matches   []models.BrandMatch `json:"matches"`
	Evaluated int                 `json:"evaluated"`
}
