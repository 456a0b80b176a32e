// internal/models/deal.go
package models

import "time"

// DealType enumerates the supported NIL deal categories. Unknown types fall
// back to the default rate row during valuation.
type DealType string

const (
	DealTypeSocialPost  DealType = "social_post"
	DealTypeAppearance  DealType = "appearance"
	DealTypeEndorsement DealType = "endorsement"
	DealTypeAutograph   DealType = "autograph"
	DealTypeCamp        DealType = "camp"
	DealTypeMerchandise DealType = "merchandise"
	DealTypeOther       DealType = "other"
)

// AllDealTypes lists every supported deal category in rate-sheet order.
var AllDealTypes = []DealType{
	DealTypeSocialPost,
	DealTypeAppearance,
	DealTypeEndorsement,
	DealTypeAutograph,
	DealTypeCamp,
	DealTypeMerchandise,
	DealTypeOther,
}

type DealStatus string

const (
	DealStatusPending   DealStatus = "pending"
	DealStatusCountered DealStatus = "countered"
	DealStatusAccepted  DealStatus = "accepted"
	DealStatusDeclined  DealStatus = "declined"
	DealStatusActive    DealStatus = "active"
	DealStatusCompleted DealStatus = "completed"
	DealStatusCancelled DealStatus = "cancelled"
)

// AllowedTransitions is the deal lifecycle state machine. A status missing
// from the map is terminal.
var AllowedTransitions = map[DealStatus][]DealStatus{
	DealStatusPending:   {DealStatusAccepted, DealStatusDeclined, DealStatusCountered, DealStatusCancelled},
	DealStatusCountered: {DealStatusAccepted, DealStatusDeclined, DealStatusCancelled},
	DealStatusAccepted:  {DealStatusActive, DealStatusCancelled},
	DealStatusActive:    {DealStatusCompleted, DealStatusCancelled},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to DealStatus) bool {
	for _, next := range AllowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DealOffer is a proposed deal as received from a brand.
type DealOffer struct {
	ID        string     `json:"id,omitempty"`
	BrandID   string     `json:"brandId,omitempty"`
	DealType  DealType   `json:"dealType"`
	Amount    float64    `json:"amount"`
	StartDate *time.Time `json:"startDate,omitempty"`
}

// ValuationResult is the fair-market-value triple for a deal. Invariant:
// Min <= Typical <= Max, all non-negative.
type ValuationResult struct {
	Min     int `json:"min"`
	Typical int `json:"typical"`
	Max     int `json:"max"`
}

type Recommendation string

const (
	RecommendationAccept    Recommendation = "accept"
	RecommendationNegotiate Recommendation = "negotiate"
	RecommendationDecline   Recommendation = "decline"
	RecommendationReview    Recommendation = "review"
)

// FactorScore is one weighted component of a deal score.
type FactorScore struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// ScoreBreakdown is the full analysis of a deal offer.
type ScoreBreakdown struct {
	Compensation   FactorScore    `json:"compensation"`
	Timing         FactorScore    `json:"timing"`
	Brand          FactorScore    `json:"brand"`
	Workload       FactorScore    `json:"workload"`
	Overall        int            `json:"overall"`
	Recommendation Recommendation `json:"recommendation"`
	CounterOffer   *int           `json:"counterOffer,omitempty"`
	RedFlags       []string       `json:"redFlags"`
	GreenFlags     []string       `json:"greenFlags"`
}
