// internal/models/brand.go
package models

// BrandProfile is the brand-side snapshot used for offer scoring and
// matching. AvgDealRating is 0.0-5.0, with 0 meaning "never rated".
type BrandProfile struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Industry       string     `json:"industry"`
	Verified       bool       `json:"verified"`
	CompletedDeals int        `json:"completedDeals"`
	AvgDealRating  float64    `json:"avgDealRating"`
	MinGPA         float64    `json:"minGpa,omitempty"`
	MinFollowers   int        `json:"minFollowers,omitempty"`
	PreferredTypes []DealType `json:"preferredDealTypes,omitempty"`
}

// BrandMatch is one ranked result from the brand matcher.
type BrandMatch struct {
	BrandID        string          `json:"brandId"`
	BrandName      string          `json:"brandName"`
	Score          int             `json:"score"`
	Reasons        []string        `json:"reasons"`
	PotentialValue ValuationResult `json:"potentialValue"`
}
