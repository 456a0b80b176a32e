// internal/workers/deal/analyze-deal-offer/handler_test.go
package analyzedealoffer

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"gradeup-workers/internal/common/logger"
	"gradeup-workers/internal/models"
	valuatedeal "gradeup-workers/internal/workers/deal/valuate-deal"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{
		CacheTTL: 10 * time.Minute,
		Timeout:  30 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	return db, mock
}

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func newTestHandler(t *testing.T, db *sql.DB) *Handler {
	h := NewHandler(createTestConfig(), db, setupTestRedis(t), logger.NewTestLogger(t))
	h.now = func() time.Time { return testNow }
	return h
}

func createTestAthlete() *models.AthleteProfile {
	return &models.AthleteProfile{
		ID:                 "athlete-123",
		Sport:              "Football",
		Major:              "Business",
		GPA:                3.8,
		ScholarTier:        models.TierGold,
		TotalFollowers:     5000,
		CompletedDeals:     6,
		EnrollmentVerified: true,
		SportVerified:      true,
		GradesVerified:     true,
		MonthlyDealCap:     4,
	}
}

func createTestBrand() *models.BrandProfile {
	return &models.BrandProfile{
		ID:             "brand-9",
		Name:           "Summit Financial",
		Industry:       "Finance",
		Verified:       true,
		CompletedDeals: 12,
		AvgDealRating:  4.8,
	}
}

func offerOf(amount float64, daysOut int) models.DealOffer {
	start := testNow.AddDate(0, 0, daysOut)
	return models.DealOffer{
		BrandID:   "brand-9",
		DealType:  models.DealTypeSocialPost,
		Amount:    amount,
		StartDate: &start,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_StrongOfferWithInlineProfiles(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	handler := newTestHandler(t, db)

	output, err := handler.Execute(context.Background(), &Input{
		AthleteID:      "athlete-123",
		Deal:           offerOf(250, 30),
		AthleteProfile: createTestAthlete(),
		BrandProfile:   createTestBrand(),
		ActiveDeals:    []models.DealSummary{},
	})

	require.NoError(t, err)
	assert.Equal(t, 192, output.Valuation.Typical)
	assert.Equal(t, models.RecommendationAccept, output.Analysis.Recommendation)
	assert.Empty(t, output.Analysis.RedFlags)
	assert.Nil(t, output.Analysis.CounterOffer)
}

func TestHandler_Execute_LowballOfferNegotiatesWithCounter(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	handler := newTestHandler(t, db)

	athlete := createTestAthlete()
	athlete.MinNoticeDays = 7

	output, err := handler.Execute(context.Background(), &Input{
		Deal:           offerOf(150, 2), // below typical, short notice
		AthleteProfile: athlete,
		BrandProfile:   createTestBrand(),
		ActiveDeals:    []models.DealSummary{},
	})

	require.NoError(t, err)
	assert.Equal(t, models.RecommendationNegotiate, output.Analysis.Recommendation)
	require.NotNil(t, output.Analysis.CounterOffer)
	assert.Equal(t, 171, *output.Analysis.CounterOffer)
	assert.Contains(t, output.Analysis.RedFlags, "insufficient notice period")
}

func TestHandler_Execute_FetchesEverythingFromDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	athleteRows := sqlmock.NewRows([]string{
		"id", "name", "school", "sport", "major", "gpa", "scholar_tier",
		"total_followers", "completed_deals", "enrollment_verified",
		"sport_verified", "grades_verified", "monthly_deal_cap", "min_notice_days",
	}).AddRow("athlete-123", "Jordan Reed", "State University", "Soccer",
		"Business", 3.8, "gold", 12000, 6, true, true, true, 4, 0)

	periodRows := sqlmock.NewRows([]string{"start_date", "end_date", "label"}).
		AddRow(time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC), "finals")

	brandRows := sqlmock.NewRows([]string{
		"id", "name", "industry", "verified", "completed_deals", "avg_deal_rating",
	}).AddRow("brand-9", "Summit Financial", "Finance", true, 12, 4.8)

	dealRows := sqlmock.NewRows([]string{"id", "status", "start_date"}).
		AddRow("deal-1", "active", time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC))

	mock.ExpectQuery("SELECT id, name, school, sport").WithArgs("athlete-123").WillReturnRows(athleteRows)
	mock.ExpectQuery("SELECT start_date, end_date, label").WithArgs("athlete-123").WillReturnRows(periodRows)
	mock.ExpectQuery("SELECT id, name, industry").WithArgs("brand-9").WillReturnRows(brandRows)
	mock.ExpectQuery("SELECT id, status, start_date").WithArgs("athlete-123").WillReturnRows(dealRows)

	handler := newTestHandler(t, db)

	// 15 days out lands on March 25, clear of the finals block.
	output, err := handler.Execute(context.Background(), &Input{
		AthleteID: "athlete-123",
		Deal:      offerOf(250, 15),
	})

	require.NoError(t, err)
	assert.Equal(t, models.RecommendationAccept, output.Analysis.Recommendation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_BlockedStartDateIsFlagged(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	athlete := createTestAthlete()
	athlete.BlockedPeriods = []models.BlockedPeriod{
		{
			Start: time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC),
			Label: "finals",
		},
	}

	handler := newTestHandler(t, db)

	output, err := handler.Execute(context.Background(), &Input{
		Deal:           offerOf(250, 28), // April 7, inside the block
		AthleteProfile: athlete,
		BrandProfile:   createTestBrand(),
		ActiveDeals:    []models.DealSummary{},
	})

	require.NoError(t, err)
	assert.Equal(t, 20, output.Analysis.Timing.Score)
	assert.Contains(t, output.Analysis.RedFlags, "conflicts with blocked period")
}

func TestHandler_Execute_NegativeAmountFails(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()

	handler := newTestHandler(t, db)

	_, err := handler.Execute(context.Background(), &Input{
		Deal:           offerOf(-10, 30),
		AthleteProfile: createTestAthlete(),
	})
	assert.Error(t, err)
}

func TestHandler_Execute_MissingBrandDegradesGracefully(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, industry").
		WithArgs("brand-9").
		WillReturnError(sql.ErrNoRows)

	handler := newTestHandler(t, db)

	output, err := handler.Execute(context.Background(), &Input{
		Deal:           offerOf(250, 30),
		AthleteProfile: createTestAthlete(),
		ActiveDeals:    []models.DealSummary{},
	})

	// Unrated, unverified brand scores the neutral base.
	require.NoError(t, err)
	assert.Equal(t, 50, output.Analysis.Brand.Score)
}

func TestHandler_Execute_CacheWarmedByValuationKeepsScoringInputs(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	// Warm athlete:profile:athlete-123 through the valuation worker.
	vdb, vmock, err := sqlmock.New()
	require.NoError(t, err)
	defer vdb.Close()

	athleteRows := sqlmock.NewRows([]string{
		"id", "name", "school", "sport", "major", "gpa", "scholar_tier",
		"total_followers", "completed_deals", "enrollment_verified",
		"sport_verified", "grades_verified", "monthly_deal_cap", "min_notice_days",
	}).AddRow("athlete-123", "Jordan Reed", "State University", "Soccer",
		"Business", 3.8, "gold", 12000, 6, true, true, true, 4, 7)
	periodRows := sqlmock.NewRows([]string{"start_date", "end_date", "label"}).
		AddRow(time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC), "finals")

	vmock.ExpectQuery("SELECT id, name, school, sport").WithArgs("athlete-123").WillReturnRows(athleteRows)
	vmock.ExpectQuery("SELECT start_date, end_date, label").WithArgs("athlete-123").WillReturnRows(periodRows)

	valuator := valuatedeal.NewHandler(valuatedeal.LoadConfig(), vdb, rdb, logger.NewTestLogger(t))
	_, err = valuator.Execute(context.Background(), &valuatedeal.Input{
		AthleteID: "athlete-123",
		DealType:  string(models.DealTypeSocialPost),
	})
	require.NoError(t, err)
	require.NoError(t, vmock.ExpectationsWereMet())

	// The scorer reads the warm cache: only the active-deals query hits
	// the database, and the cached profile must still carry the blocked
	// periods so a conflicting start date is caught.
	adb, amock, err := sqlmock.New()
	require.NoError(t, err)
	defer adb.Close()

	amock.ExpectQuery("SELECT id, status, start_date").
		WithArgs("athlete-123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "start_date"}))

	handler := NewHandler(createTestConfig(), adb, rdb, logger.NewTestLogger(t))
	handler.now = func() time.Time { return testNow }

	output, err := handler.Execute(context.Background(), &Input{
		AthleteID:    "athlete-123",
		Deal:         offerOf(250, 28), // April 7, inside the finals block
		BrandProfile: createTestBrand(),
	})

	require.NoError(t, err)
	assert.NoError(t, amock.ExpectationsWereMet())
	assert.Equal(t, 20, output.Analysis.Timing.Score)
	assert.Contains(t, output.Analysis.RedFlags, "conflicts with blocked period")
	assert.NotEqual(t, models.RecommendationAccept, output.Analysis.Recommendation)
}
