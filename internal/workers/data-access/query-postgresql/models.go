// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "gradeup-workers/internal/models"

type Input struct {
	QueryType string                 `json:"queryType"`
	AthleteID string                 `json:"athleteId,omitempty"`
	BrandID   string                 `json:"brandId,omitempty"`
	DealID    string                 `json:"dealId,omitempty"`
	DealIDs   []string               `json:"dealIds,omitempty"`
	Filters   map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

// Export constants for external use
var (
	QueryTypeAthleteProfile        = models.QueryTypeAthleteProfile
	QueryTypeAthleteActiveDeals    = models.QueryTypeAthleteActiveDeals
	QueryTypeAthleteBlockedPeriods = models.QueryTypeAthleteBlockedPeriods
	QueryTypeBrandProfile          = models.QueryTypeBrandProfile
	QueryTypeDealDetails           = models.QueryTypeDealDetails
)
