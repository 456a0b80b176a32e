// internal/workers/deal/valuate-deal/handler.go
package valuatedeal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gradeup-workers/internal/common/logger"
	"gradeup-workers/internal/dealintel"
	"gradeup-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "valuate-deal"
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, "VALUATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	athlete := input.AthleteProfile
	if athlete == nil {
		if input.AthleteID == "" {
			return nil, fmt.Errorf("athleteId or athleteProfile is required")
		}
		var err error
		athlete, err = h.getAthleteProfile(ctx, input.AthleteID)
		if errors.Is(err, sql.ErrNoRows) {
			// Unknown athletes are valued at the baseline rate rather
			// than failing the workflow.
			h.logger.Warn("athlete profile not found, using baseline rates", map[string]interface{}{
				"athleteId": input.AthleteID,
			})
			athlete = &models.AthleteProfile{ID: input.AthleteID}
		} else if err != nil {
			return nil, fmt.Errorf("fetch athlete profile: %w", err)
		}
	}

	output := &Output{AthleteID: athlete.ID}

	if input.DealType != "" {
		output.Valuation = dealintel.Valuate(athlete, models.DealType(input.DealType))
	} else {
		// No deal type requested: value every known type so the caller can
		// render a full rate sheet.
		output.ByType = make(map[string]models.ValuationResult, len(models.AllDealTypes))
		for _, dt := range models.AllDealTypes {
			output.ByType[string(dt)] = dealintel.Valuate(athlete, dt)
		}
		output.Valuation = output.ByType[string(models.DealTypeOther)]
	}

	h.logger.Info("valuation calculated", map[string]interface{}{
		"athleteId": athlete.ID,
		"dealType":  input.DealType,
		"typical":   output.Valuation.Typical,
	})

	return output, nil
}

func (h *Handler) getAthleteProfile(ctx context.Context, athleteID string) (*models.AthleteProfile, error) {
	cacheKey := "athlete:profile:" + athleteID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var profile models.AthleteProfile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}
	}

	// Every writer of athlete:profile:<id> must cache the full scoring
	// profile (cap, notice days, blocked periods) so a warm cache never
	// starves the offer scorer of its timing and workload inputs.
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
