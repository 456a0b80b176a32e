// internal/dealintel/scorer.go
package dealintel

import (
	"fmt"
	"math"
	"time"

	"gradeup-workers/internal/models"
)

// Sub-score weights. They must sum to 1.0.
const (
	weightCompensation = 0.35
	weightTiming       = 0.25
	weightBrand        = 0.25
	weightWorkload     = 0.15
)

// Flag tags surfaced in ScoreBreakdown.
const (
	FlagBelowMarketRate    = "below market rate"
	FlagMeetsMarketRate    = "meets or exceeds market rate"
	FlagBlockedPeriod      = "conflicts with blocked period"
	FlagInsufficientNotice = "insufficient notice period"
	FlagMonthlyLimit       = "at or over monthly deal limit"
	FlagStrongBrand        = "highly rated verified brand"
	FlagLightDealLoad      = "light current deal load"
)

// ScoreInput is a fully-materialized snapshot of everything the scorer
// reads. Now is passed in by the caller so the calculation stays
// deterministic; handlers use time.Now().UTC().
type ScoreInput struct {
	Athlete     *models.AthleteProfile
	Deal        models.DealOffer
	Brand       models.BrandProfile
	ActiveDeals []models.DealSummary
	Now         time.Time
}

// Score analyzes a deal offer against an athlete profile and produces the
// weighted breakdown, recommendation and optional counter-offer. Pure; no
// failure mode for well-formed input.
func Score(in ScoreInput) models.ScoreBreakdown {
	var red, green []string

	valuation := Valuate(in.Athlete, in.Deal.DealType)

	comp, compRed, compGreen := compensationScore(valuation, in.Deal.Amount)
	red = append(red, compRed...)
	green = append(green, compGreen...)

	timing, timingRed := timingScore(in.Athlete, in.Deal.StartDate, in.Now)
	red = append(red, timingRed...)

	brand, brandGreen := brandScore(in.Brand, in.Athlete.Major)
	green = append(green, brandGreen...)

	workload, workloadRed, workloadGreen := workloadScore(in.ActiveDeals, in.Athlete.MonthlyDealCap, in.Now)
	red = append(red, workloadRed...)
	green = append(green, workloadGreen...)

	overall := int(math.Round(
		weightCompensation*float64(comp.Score) +
			weightTiming*float64(timing.Score) +
			weightBrand*float64(brand.Score) +
			weightWorkload*float64(workload.Score)))

	recommendation := recommend(overall, len(red), len(green))

	breakdown := models.ScoreBreakdown{
		Compensation:   comp,
		Timing:         timing,
		Brand:          brand,
		Workload:       workload,
		Overall:        overall,
		Recommendation: recommendation,
		RedFlags:       red,
		GreenFlags:     green,
	}

	if recommendation == models.RecommendationNegotiate && in.Deal.Amount < float64(valuation.Typical) {
		counter := counterOffer(valuation, in.Deal.Amount)
		breakdown.CounterOffer = &counter
	}

	return breakdown
}

// compensationScore compares the offered amount to the fair-market range.
// At or above typical scores 80-100; between min and typical interpolates
// 40-80; below min decays toward the floor of 10.
func compensationScore(v models.ValuationResult, amount float64) (models.FactorScore, []string, []string) {
	typical := float64(v.Typical)
	floor := float64(v.Min)

	var score float64
	var red, green []string

	switch {
	case typical <= 0 || amount >= typical:
		score = 80
		if typical > 0 {
			score = math.Min(100, 80+((amount-typical)/typical)*50)
		}
		green = append(green, FlagMeetsMarketRate)
	case amount >= floor:
		score = 40 + ((amount-floor)/(typical-floor))*40
	default:
		score = math.Max(10, (amount/floor)*40)
		red = append(red, FlagBelowMarketRate)
	}

	return models.FactorScore{
		Score:       int(math.Round(score)),
		Explanation: fmt.Sprintf("offer of $%.0f vs typical market value of $%d (range $%d-$%d)", amount, v.Typical, v.Min, v.Max),
	}, red, green
}

// timingScore starts at 70 and applies two independent penalties: a start
// date inside a blocked period drops the score to 20, and a start date
// sooner than the athlete's minimum notice subtracts 30 more (floor 10).
func timingScore(athlete *models.AthleteProfile, start *time.Time, now time.Time) (models.FactorScore, []string) {
	if start == nil {
		return models.FactorScore{Score: 70, Explanation: "no start date proposed"}, nil
	}

	score := 70
	explanation := fmt.Sprintf("start date %s works with the athlete's calendar", start.Format("2006-01-02"))
	var red []string

	if period, blocked := NewBlockedCalendar(athlete.BlockedPeriods).Contains(*start); blocked {
		score = 20
		explanation = fmt.Sprintf("start date %s falls inside a blocked period (%s)", start.Format("2006-01-02"), period.Label)
		red = append(red, FlagBlockedPeriod)
	}

	if athlete.MinNoticeDays > 0 {
		daysUntil := int(start.Sub(now).Hours() / 24)
		if daysUntil < athlete.MinNoticeDays {
			score -= 30
			if score < 10 {
				score = 10
			}
			explanation = fmt.Sprintf("%d days notice, athlete requires %d", daysUntil, athlete.MinNoticeDays)
			red = append(red, FlagInsufficientNotice)
		}
	}

	return models.FactorScore{Score: score, Explanation: explanation}, red
}

// brandScore rates the offering brand from a base of 50. A rating of
// exactly 0 means "never rated" and is deliberately exempt from the low
// rating penalty; only ratings in (0, 3.5) penalize. Changing that would
// shift recommendations for every brand new to the platform.
func brandScore(brand models.BrandProfile, major string) (models.FactorScore, []string) {
	score := 50
	var notes []string
	var green []string

	if brand.Verified {
		score += 20
		notes = append(notes, "verified")
	}
	if brand.CompletedDeals >= 10 {
		score += 15
		notes = append(notes, fmt.Sprintf("%d completed deals", brand.CompletedDeals))
	}

	switch {
	case brand.AvgDealRating >= 4.5:
		score += 15
		notes = append(notes, fmt.Sprintf("rated %.1f", brand.AvgDealRating))
	case brand.AvgDealRating >= 4.0:
		score += 10
		notes = append(notes, fmt.Sprintf("rated %.1f", brand.AvgDealRating))
	case brand.AvgDealRating > 0 && brand.AvgDealRating < 3.5:
		score -= 20
		notes = append(notes, fmt.Sprintf("low rating %.1f", brand.AvgDealRating))
	}

	if industryMatches(brand.Industry, major) {
		score += 15
		notes = append(notes, fmt.Sprintf("%s aligns with athlete's field of study", brand.Industry))
	}

	if brand.Verified && brand.AvgDealRating >= 4.5 {
		green = append(green, FlagStrongBrand)
	}

	explanation := "no track record on the platform yet"
	if len(notes) > 0 {
		explanation = joinNotes(notes)
	}

	return models.FactorScore{Score: clamp(score), Explanation: explanation}, green
}

// workloadScore checks the athlete's deal volume for the calendar month of
// now. A monthly cap of zero means no cap was configured.
func workloadScore(deals []models.DealSummary, monthlyCap int, now time.Time) (models.FactorScore, []string, []string) {
	count := 0
	for _, d := range deals {
		if d.Status != models.DealStatusActive && d.Status != models.DealStatusAccepted {
			continue
		}
		if d.StartDate == nil {
			continue
		}
		if d.StartDate.Year() == now.Year() && d.StartDate.Month() == now.Month() {
			count++
		}
	}

	score := 70
	explanation := fmt.Sprintf("%d deals starting this month", count)
	var red, green []string

	if monthlyCap > 0 {
		switch {
		case count >= monthlyCap:
			score = 30
			explanation = fmt.Sprintf("%d deals this month, cap is %d", count, monthlyCap)
			red = append(red, FlagMonthlyLimit)
		case count == monthlyCap-1:
			score = 50
			explanation = fmt.Sprintf("%d deals this month, one below the cap of %d", count, monthlyCap)
		}
	}

	if count == 0 {
		green = append(green, FlagLightDealLoad)
	}

	return models.FactorScore{Score: score, Explanation: explanation}, red, green
}

// recommend applies the recommendation policy in strict priority order.
// An accept is only ever issued with zero red flags.
func recommend(overall, redCount, greenCount int) models.Recommendation {
	switch {
	case overall >= 75 && redCount == 0:
		return models.RecommendationAccept
	case overall >= 50 || (overall >= 40 && greenCount >= 2):
		if redCount == 0 {
			return models.RecommendationAccept
		}
		return models.RecommendationNegotiate
	case overall >= 35:
		return models.RecommendationNegotiate
	case redCount >= 3:
		return models.RecommendationDecline
	default:
		return models.RecommendationReview
	}
}

// counterOffer is the midpoint between the offer and typical, never below
// the bottom of the market range.
func counterOffer(v models.ValuationResult, amount float64) int {
	counter := int(math.Round((float64(v.Typical) + amount) / 2))
	if counter < v.Min {
		counter = v.Min
	}
	return counter
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func joinNotes(notes []string) string {
	out := notes[0]
	for _, n := range notes[1:] {
		out += ", " + n
	}
	return out
}
