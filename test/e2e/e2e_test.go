// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gradeup-workers/internal/common/camunda"
	"gradeup-workers/internal/common/config"
	"gradeup-workers/internal/common/database"
	"gradeup-workers/internal/common/logger"
	"gradeup-workers/internal/common/validation"
	"gradeup-workers/internal/models"
	"gradeup-workers/pkg/registry"

	checkathleteverification "gradeup-workers/internal/workers/athlete/check-athlete-verification"
	queryelasticsearch "gradeup-workers/internal/workers/data-access/query-elasticsearch"
	querypostgresql "gradeup-workers/internal/workers/data-access/query-postgresql"
	analyzedealoffer "gradeup-workers/internal/workers/deal/analyze-deal-offer"
	recommendbrands "gradeup-workers/internal/workers/deal/recommend-brands"
	updatedealstatus "gradeup-workers/internal/workers/deal/update-deal-status"
	valuatedeal "gradeup-workers/internal/workers/deal/valuate-deal"
)

const registryPath = "../../configs/activity-registry.json"

// --- Registry tests (no external services required) ---

func TestActivityRegistry(t *testing.T) {
	reg, err := registry.LoadRegistry(registryPath)
	require.NoError(t, err, "activity registry should load")
	require.NotEmpty(t, reg.Activities)

	seenTaskTypes := map[string]bool{}
	for _, activity := range reg.Activities {
		t.Run(activity.ID, func(t *testing.T) {
			assert.NoError(t, validation.ValidateActivityNaming(activity.ID))
			assert.NotEmpty(t, activity.DisplayName)
			assert.NotEmpty(t, activity.TaskType)
			assert.NotEmpty(t, activity.Category)
			assert.False(t, seenTaskTypes[activity.TaskType], "duplicate task type %s", activity.TaskType)
			seenTaskTypes[activity.TaskType] = true
		})
	}

	expected := []string{
		valuatedeal.TaskType,
		analyzedealoffer.TaskType,
		recommendbrands.TaskType,
		updatedealstatus.TaskType,
		checkathleteverification.TaskType,
		querypostgresql.TaskType,
		queryelasticsearch.TaskType,
		"send-notification",
	}
	for _, taskType := range expected {
		assert.True(t, seenTaskTypes[taskType], "registry missing task type %s", taskType)
	}
}

func TestActivityRegistry_InputSchemas(t *testing.T) {
	reg, err := registry.LoadRegistry(registryPath)
	require.NoError(t, err)

	var valuate *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].TaskType == valuatedeal.TaskType {
			valuate = &reg.Activities[i]
		}
	}
	require.NotNil(t, valuate, "valuate-deal activity missing from registry")

	result, err := validation.ValidateInput(map[string]interface{}{
		"athleteId": "ath-001",
		"dealType":  "social_post",
	}, valuate.InputSchema)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = validation.ValidateInput(map[string]interface{}{
		"dealType": "social_post",
	}, valuate.InputSchema)
	require.NoError(t, err)
	assert.False(t, result.Valid, "athleteId is required")
	assert.NotEmpty(t, result.GetErrorMessages())
}

// --- Connectivity helpers ---

func loadTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Skipf("Skipping test: config not loadable: %v", err)
	}
	return cfg
}

func connectPostgres(t *testing.T, cfg *config.Config) *database.PostgresClient {
	t.Helper()
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
	}
	if err := pg.Ping(context.Background()); err != nil {
		t.Skipf("Skipping test: PostgreSQL not responding: %v", err)
	}
	return pg
}

func connectRedis(t *testing.T, cfg *config.Config) *database.RedisClient {
	t.Helper()
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		t.Skipf("Skipping test: Redis not available: %v", err)
	}
	if err := rdb.Ping(context.Background()); err != nil {
		t.Skipf("Skipping test: Redis not responding: %v", err)
	}
	return rdb
}

func connectElasticsearch(t *testing.T, cfg *config.Config) *database.ElasticsearchClient {
	t.Helper()
	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		t.Skipf("Skipping test: Elasticsearch not available: %v", err)
	}
	if err := es.Ping(); err != nil {
		t.Skipf("Skipping test: Elasticsearch not responding: %v", err)
	}
	return es
}

func TestZeebeConnectivity(t *testing.T) {
	cfg := loadTestConfig(t)

	client, err := camunda.NewClient(cfg.Camunda.BrokerAddress)
	if err != nil {
		t.Skipf("Skipping test: Zeebe not available: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		t.Skipf("Skipping test: Zeebe gateway not responding: %v", err)
	}
}

// --- Schema and seed data ---

const (
	e2eAthleteID = "e2e-athlete-1"
	e2eBrandID   = "e2e-brand-1"
	e2eDealID    = "e2e-deal-1"
)

func setupSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS athletes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			school TEXT,
			sport TEXT,
			major TEXT,
			gpa NUMERIC,
			scholar_tier TEXT,
			total_followers INTEGER,
			completed_deals INTEGER,
			enrollment_verified BOOLEAN,
			sport_verified BOOLEAN,
			grades_verified BOOLEAN,
			monthly_deal_cap INTEGER,
			min_notice_days INTEGER,
			email TEXT,
			phone TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS brands (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			industry TEXT,
			verified BOOLEAN,
			completed_deals INTEGER,
			avg_deal_rating NUMERIC,
			email TEXT,
			phone TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS deals (
			id TEXT PRIMARY KEY,
			athlete_id TEXT,
			brand_id TEXT,
			deal_type TEXT,
			amount NUMERIC,
			status TEXT,
			start_date TIMESTAMPTZ,
			deliverables TEXT,
			updated_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS blocked_periods (
			athlete_id TEXT,
			start_date TIMESTAMPTZ,
			end_date TIMESTAMPTZ,
			label TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS deal_events (
			id TEXT PRIMARY KEY,
			deal_id TEXT,
			from_status TEXT,
			to_status TEXT,
			actor_id TEXT,
			reason TEXT,
			created_at TIMESTAMPTZ
		)`,
	}
	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "schema setup failed")
	}

	// Reset seed rows so reruns start clean.
	for _, stmt := range []string{
		`DELETE FROM deal_events WHERE deal_id = '` + e2eDealID + `'`,
		`DELETE FROM deals WHERE id = '` + e2eDealID + `'`,
		`DELETE FROM blocked_periods WHERE athlete_id = '` + e2eAthleteID + `'`,
		`DELETE FROM athletes WHERE id = '` + e2eAthleteID + `'`,
		`DELETE FROM brands WHERE id = '` + e2eBrandID + `'`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	_, err := db.Exec(`
		INSERT INTO athletes (id, name, school, sport, major, gpa, scholar_tier,
			total_followers, completed_deals, enrollment_verified, sport_verified,
			grades_verified, monthly_deal_cap, min_notice_days, email, phone)
		VALUES ($1, 'Jordan Lee', 'State University', 'soccer', 'biology', 3.8, 'gold',
			12000, 6, true, true, true, 3, 14, 'jordan.lee@stateu.edu', '+12025550143')`,
		e2eAthleteID)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO brands (id, name, industry, verified, completed_deals,
			avg_deal_rating, email, phone)
		VALUES ($1, 'Campus Coffee Co', 'food', true, 14, 4.6,
			'partnerships@campuscoffee.com', '+12025550177')`,
		e2eBrandID)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO deals (id, athlete_id, brand_id, deal_type, amount, status,
			start_date, deliverables, updated_at)
		VALUES ($1, $2, $3, 'social_post', 250, 'pending', NOW() + INTERVAL '21 days',
			'2 instagram posts', NOW())`,
		e2eDealID, e2eAthleteID, e2eBrandID)
	require.NoError(t, err)
}

// --- Full pipeline against real services ---

func TestDealIntelligencePipeline(t *testing.T) {
	cfg := loadTestConfig(t)
	pg := connectPostgres(t, cfg)
	defer pg.Close()
	rdb := connectRedis(t, cfg)
	defer rdb.Close()

	setupSchema(t, pg.DB)

	log := logger.NewZapAdapter(zaptest.NewLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Drop any cached profile left over from a previous run.
	_ = rdb.Del(ctx, "athlete:profile:"+e2eAthleteID)
	_ = rdb.Del(ctx, "athlete:verification:"+e2eAthleteID)

	t.Run("valuate deal", func(t *testing.T) {
		handler := valuatedeal.NewHandler(
			&valuatedeal.Config{CacheTTL: time.Minute, Timeout: 30 * time.Second},
			pg.DB, rdb.Client, log,
		)

		output, err := handler.Execute(ctx, &valuatedeal.Input{
			AthleteID: e2eAthleteID,
			DealType:  "social_post",
		})
		require.NoError(t, err)
		require.NotNil(t, output)

		assert.Equal(t, e2eAthleteID, output.AthleteID)
		assert.Greater(t, output.Valuation.Typical, 0)
		assert.LessOrEqual(t, output.Valuation.Min, output.Valuation.Typical)
		assert.LessOrEqual(t, output.Valuation.Typical, output.Valuation.Max)
	})

	t.Run("analyze deal offer", func(t *testing.T) {
		handler := analyzedealoffer.NewHandler(
			&analyzedealoffer.Config{CacheTTL: time.Minute, Timeout: 30 * time.Second},
			pg.DB, rdb.Client, log,
		)

		start := time.Now().AddDate(0, 0, 21)
		output, err := handler.Execute(ctx, &analyzedealoffer.Input{
			AthleteID: e2eAthleteID,
			Deal: models.DealOffer{
				ID:        e2eDealID,
				BrandID:   e2eBrandID,
				DealType:  models.DealTypeSocialPost,
				Amount:    250,
				StartDate: &start,
			},
		})
		require.NoError(t, err)
		require.NotNil(t, output)

		assert.Equal(t, e2eAthleteID, output.AthleteID)
		assert.GreaterOrEqual(t, output.Analysis.Overall, 0)
		assert.LessOrEqual(t, output.Analysis.Overall, 100)
		assert.NotEmpty(t, output.Analysis.Recommendation)
	})

	t.Run("recommend brands with inline candidates", func(t *testing.T) {
		handler := recommendbrands.NewHandler(
			&recommendbrands.Config{
				BrandIndex:    "brands",
				CandidatePool: 100,
				CacheTTL:      time.Minute,
				Timeout:       30 * time.Second,
			},
			pg.DB, nil, rdb.Client, log,
		)

		output, err := handler.Execute(ctx, &recommendbrands.Input{
			AthleteID: e2eAthleteID,
			Limit:     5,
			Candidates: []models.BrandProfile{
				{ID: e2eBrandID, Name: "Campus Coffee Co", Industry: "food", Verified: true, CompletedDeals: 14, AvgDealRating: 4.6},
				{ID: "e2e-brand-2", Name: "Peak Performance Gear", Industry: "apparel", Verified: true, CompletedDeals: 22, AvgDealRating: 4.8, MinGPA: 3.9},
			},
		})
		require.NoError(t, err)
		require.NotNil(t, output)

		assert.Equal(t, 2, output.Evaluated)
		require.NotEmpty(t, output.Matches)
		for _, match := range output.Matches {
			assert.NotEqual(t, "e2e-brand-2", match.BrandID, "GPA floor should exclude this brand")
		}
	})

	t.Run("check athlete verification", func(t *testing.T) {
		handler := checkathleteverification.NewHandler(
			&checkathleteverification.Config{CacheTTL: time.Minute, Timeout: 10 * time.Second},
			pg.DB, rdb.Client, log,
		)

		output, err := handler.Execute(ctx, &checkathleteverification.Input{AthleteID: e2eAthleteID})
		require.NoError(t, err)
		require.NotNil(t, output)

		assert.True(t, output.Verification.FullyVerified)
		assert.Empty(t, output.Missing)
	})

	t.Run("update deal status", func(t *testing.T) {
		handler := updatedealstatus.NewHandler(
			&updatedealstatus.Config{Timeout: 10 * time.Second},
			pg.DB, rdb.Client, log,
		)

		output, err := handler.Execute(ctx, &updatedealstatus.Input{
			DealID:    e2eDealID,
			NewStatus: "accepted",
			ActorID:   e2eAthleteID,
		})
		require.NoError(t, err)
		require.NotNil(t, output)

		assert.Equal(t, "pending", output.PreviousStatus)
		assert.Equal(t, "accepted", output.Status)

		var eventCount int
		err = pg.DB.QueryRow(
			`SELECT COUNT(*) FROM deal_events WHERE deal_id = $1`, e2eDealID,
		).Scan(&eventCount)
		require.NoError(t, err)
		assert.Equal(t, 1, eventCount, "transition should be journaled")

		// Invalid transition from the new state.
		_, err = handler.Execute(ctx, &updatedealstatus.Input{
			DealID:    e2eDealID,
			NewStatus: "pending",
		})
		assert.Error(t, err)
	})

	t.Run("query postgresql worker", func(t *testing.T) {
		handler := querypostgresql.NewHandler(
			&querypostgresql.Config{Timeout: 15 * time.Second},
			pg.DB, log,
		)

		output, err := handler.Execute(ctx, &querypostgresql.Input{
			QueryType: string(models.QueryTypeAthleteActiveDeals),
			AthleteID: e2eAthleteID,
		})
		require.NoError(t, err)
		require.NotNil(t, output)

		// The deal was just moved to accepted, which counts as active work.
		assert.Equal(t, 1, output.RowCount)
	})
}

func TestQueryElasticsearchWorker_RealCluster(t *testing.T) {
	cfg := loadTestConfig(t)
	es := connectElasticsearch(t, cfg)

	indexName := "brands-e2e"
	es.Client.Indices.Delete([]string{indexName}, es.Client.Indices.Delete.WithIgnoreUnavailable(true))

	doc := map[string]interface{}{
		"name":            "Campus Coffee Co",
		"notes":           "Local coffee chain partnering with student athletes",
		"industry":        "food",
		"verified":        true,
		"min_gpa":         3.0,
		"min_followers":   1000,
		"completed_deals": 14,
		"avg_deal_rating": 4.6,
	}
	body, _ := json.Marshal(doc)
	res, err := es.Client.Index(
		indexName,
		strings.NewReader(string(body)),
		es.Client.Index.WithDocumentID("1"),
		es.Client.Index.WithRefresh("wait_for"),
	)
	require.NoError(t, err)
	res.Body.Close()

	log := logger.NewZapAdapter(zaptest.NewLogger(t))
	handler := queryelasticsearch.NewHandler(
		&queryelasticsearch.Config{Timeout: 15 * time.Second},
		es.Client, log,
	)

	output, err := handler.Execute(context.Background(), &queryelasticsearch.Input{
		IndexName: indexName,
		QueryType: "brand_search",
		Filters: map[string]interface{}{
			"industry": "food",
		},
		Pagination: queryelasticsearch.Pagination{From: 0, Size: 10},
	})
	require.NoError(t, err)
	require.NotNil(t, output)

	assert.Equal(t, int64(1), output.TotalHits)
	require.Len(t, output.Data, 1)
	assert.Equal(t, "Campus Coffee Co", output.Data[0]["name"])
}

func BenchmarkValuateDeal_Execute(b *testing.B) {
	cfg, err := config.Load()
	if err != nil {
		b.Skipf("config not loadable: %v", err)
	}
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		b.Skipf("PostgreSQL not available: %v", err)
	}
	defer pg.Close()
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		b.Skipf("Redis not available: %v", err)
	}
	defer rdb.Close()

	zapLog := logger.New("error", "console")
	log := logger.NewZapAdapter(zapLog)

	handler := valuatedeal.NewHandler(
		&valuatedeal.Config{CacheTTL: time.Minute, Timeout: 30 * time.Second},
		pg.DB, rdb.Client, log,
	)

	input := &valuatedeal.Input{AthleteID: e2eAthleteID, DealType: "social_post"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := handler.Execute(context.Background(), input); err != nil {
			b.Fatalf("execute: %v", err)
		}
	}
}
