// internal/workers/deal/analyze-deal-offer/handler.go
package analyzedealoffer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gradeup-workers/internal/common/logger"
	"gradeup-workers/internal/dealintel"
	"gradeup-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "analyze-deal-offer"
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "SCORE_CALCULATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Deal.Amount < 0 {
		return nil, fmt.Errorf("deal amount must be non-negative")
	}

	athlete := input.AthleteProfile
	if athlete == nil {
		if input.AthleteID == "" {
			return nil, fmt.Errorf("athleteId or athleteProfile is required")
		}
		var err error
		athlete, err = h.getAthleteProfile(ctx, input.AthleteID)
		if err != nil {
			return nil, fmt.Errorf("fetch athlete profile: %w", err)
		}
	}

	brand := input.BrandProfile
	if brand == nil && input.Deal.BrandID != "" {
		fetched, err := h.getBrandProfile(ctx, input.Deal.BrandID)
		if err != nil {
			h.logger.Warn("failed to fetch brand profile, scoring without it", map[string]interface{}{
				"brandId": input.Deal.BrandID,
				"error":   err,
			})
		} else {
			brand = fetched
		}
	}
	if brand == nil {
		brand = &models.BrandProfile{}
	}

	activeDeals := input.ActiveDeals
	if activeDeals == nil && athlete.ID != "" {
		fetched, err := h.getActiveDeals(ctx, athlete.ID)
		if err != nil {
			h.logger.Warn("failed to fetch active deals, workload check degraded", map[string]interface{}{
				"athleteId": athlete.ID,
				"error":     err,
			})
		} else {
			activeDeals = fetched
		}
	}

	breakdown := dealintel.Score(dealintel.ScoreInput{
		Athlete:     athlete,
		Deal:        input.Deal,
		Brand:       *brand,
		ActiveDeals: activeDeals,
		Now:         h.now(),
	})

	h.logger.Info("deal offer analyzed", map[string]interface{}{
		"athleteId":      athlete.ID,
		"brandId":        input.Deal.BrandID,
		"dealType":       string(input.Deal.DealType),
		"overall":        breakdown.Overall,
		"recommendation": string(breakdown.Recommendation),
	})

	return &Output{
		AthleteID: athlete.ID,
		Valuation: dealintel.Valuate(athlete, input.Deal.DealType),
		Analysis:  breakdown,
	}, nil
}

func (h *Handler) getAthleteProfile(ctx context.Context, athleteID string) (*models.AthleteProfile, error) {
	cacheKey := "athlete:profile:" + athleteID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var profile models.AthleteProfile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT id, name, school, sport, major, gpa, scholar_tier, total_followers,
		       completed_deals, enrollment_verified, sport_verified, grades_verified,
		       monthly_deal_cap, min_notice_days
		FROM athletes WHERE id = $1`, athleteID)

	var profile models.AthleteProfile
	var tier string
	err := row.Scan(&profile.ID, &profile.Name, &profile.School, &profile.Sport,
		&profile.Major, &profile.GPA, &tier, &profile.TotalFollowers,
		&profile.CompletedDeals, &profile.EnrollmentVerified,
		&profile.SportVerified, &profile.GradesVerified,
		&profile.MonthlyDealCap, &profile.MinNoticeDays)
	if err != nil {
		return nil, err
	}
	profile.ScholarTier = models.ScholarTier(tier)

	periods, err := h.getBlockedPeriods(ctx, athleteID)
	if err != nil {
		h.logger.Warn("failed to fetch blocked periods", map[string]interface{}{
			"athleteId": athleteID,
			"error":     err,
		})
	} else {
		profile.BlockedPeriods = periods
	}

	data, _ := json.Marshal(profile)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &profile, nil
}

func (h *Handler) getBlockedPeriods(ctx context.Context, athleteID string) ([]models.BlockedPeriod, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT start_date, end_date, label
		FROM blocked_periods WHERE athlete_id = $1
		ORDER BY start_date`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []models.BlockedPeriod
	for rows.Next() {
		var p models.BlockedPeriod
		if err := rows.Scan(&p.Start, &p.End, &p.Label); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (h *Handler) getActiveDeals(ctx context.Context, athleteID string) ([]models.DealSummary, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, status, start_date
		FROM deals WHERE athlete_id = $1 AND status IN ('active', 'accepted')`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []models.DealSummary
	for rows.Next() {
		var d models.DealSummary
		var status string
		var start sql.NullTime
		if err := rows.Scan(&d.ID, &status, &start); err != nil {
			return nil, err
		}
		d.Status = models.DealStatus(status)
		if start.Valid {
			t := start.Time
			d.StartDate = &t
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func (h *Handler) getBrandProfile(ctx context.Context, brandID string) (*models.BrandProfile, error) {
	cacheKey := "brand:profile:" + brandID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var profile models.BrandProfile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT id, name, industry, verified, completed_deals, avg_deal_rating
		FROM brands WHERE id = $1`, brandID)

	var profile models.BrandProfile
	err := row.Scan(&profile.ID, &profile.Name, &profile.Industry,
		&profile.Verified, &profile.CompletedDeals, &profile.AvgDealRating)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(profile)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &profile, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
