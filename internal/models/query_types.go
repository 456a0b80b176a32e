// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeAthleteProfile        QueryType = "athlete_profile"
	QueryTypeAthleteActiveDeals    QueryType = "athlete_active_deals"
	QueryTypeAthleteBlockedPeriods QueryType = "athlete_blocked_periods"
	QueryTypeBrandProfile          QueryType = "brand_profile"
	QueryTypeDealDetails           QueryType = "deal_details"
)
