// internal/models/athlete.go
package models

import "time"

// ScholarTier classifies an athlete's academic standing. Used as a
// valuation multiplier; unknown values behave like TierNone.
type ScholarTier string

const (
	TierNone     ScholarTier = ""
	TierBronze   ScholarTier = "bronze"
	TierSilver   ScholarTier = "silver"
	TierGold     ScholarTier = "gold"
	TierPlatinum ScholarTier = "platinum"
)

// BlockedPeriod is a closed date interval during which the athlete does not
// take deals (exam weeks, travel, custom blocks).
type BlockedPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label,omitempty"`
}

// DealSummary is the slice of a deal row the workload check needs.
type DealSummary struct {
	ID        string     `json:"id"`
	Status    DealStatus `json:"status"`
	StartDate *time.Time `json:"startDate,omitempty"`
}

type AthleteProfile struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	School         string          `json:"school"`
	Sport          string          `json:"sport"`
	Major          string          `json:"major"`
	GPA            float64         `json:"gpa"`
	TermGPA        float64         `json:"termGpa"`
	ScholarTier    ScholarTier     `json:"scholarTier"`
	TotalFollowers int             `json:"totalFollowers"`
	CompletedDeals int             `json:"completedDeals"`

	EnrollmentVerified bool `json:"enrollmentVerified"`
	SportVerified      bool `json:"sportVerified"`
	GradesVerified     bool `json:"gradesVerified"`

	MonthlyDealCount int `json:"monthlyDealCount"`
	MonthlyDealCap   int `json:"monthlyDealCap"`
	MinNoticeDays    int `json:"minNoticeDays"`

	BlockedPeriods []BlockedPeriod `json:"blockedPeriods,omitempty"`
}

// FullyVerified reports whether all three verification checks have passed.
func (a *AthleteProfile) FullyVerified() bool {
	return a.EnrollmentVerified && a.SportVerified && a.GradesVerified
}

type AthleteVerification struct {
	AthleteID          string `json:"athleteId"`
	EnrollmentVerified bool   `json:"enrollmentVerified"`
	SportVerified      bool   `json:"sportVerified"`
	GradesVerified     bool   `json:"gradesVerified"`
	FullyVerified      bool   `json:"fullyVerified"`
	VerifiedAt         string `json:"verifiedAt,omitempty"`
}
