// internal/workers/athlete/check-athlete-verification/models.go
package checkathleteverification

import "gradeup-workers/internal/models"

type Input struct {
	AthleteID      string                 `json:"athleteId"`
	AthleteProfile *models.AthleteProfile `json:"athleteProfile,omitempty"`
}

type Output struct {
	Verification models.AthleteVerification `json:"verification"`
	Missing      []string                   `json:"missing"`
}
