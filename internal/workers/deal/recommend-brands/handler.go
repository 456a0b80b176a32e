// internal/workers/deal/recommend-brands/handler.go
package recommendbrands

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"gradeup-workers/internal/common/logger"
	"gradeup-workers/internal/dealintel"
	"gradeup-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "recommend-brands"
)

type Handler struct {
	config *Config
	db     *sql.DB
	es     *elasticsearch.Client
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, es *elasticsearch.Client, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		es:     es,
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
		h.failJob(client, job, "SEARCH_QUERY_FAILED", err.Error())
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
		if err != nil {
			return nil, fmt.Errorf("fetch athlete profile: %w", err)
		}
	}

	candidates := input.Candidates
	if candidates == nil {
		fetched, err := h.searchCandidateBrands(ctx, athlete, input.Industry)
		if err != nil {
			return nil, fmt.Errorf("search candidate brands: %w", err)
		}
		candidates = fetched
	}

	matches := dealintel.MatchBrands(athlete, candidates, input.Limit)

	h.logger.Info("brand recommendations built", map[string]interface{}{
		"athleteId": athlete.ID,
		"evaluated": len(candidates),
		"matched":   len(matches),
	})

	return &Output{
		AthleteID: athlete.ID,
		Matches:   matches,
		Evaluated: len(candidates),
	}, nil
}

// searchCandidateBrands pulls a candidate pool from the brand index. The hard
// eligibility filters (minimum GPA, minimum followers) are pushed into the
// query so the matcher only ranks brands the athlete can actually work with.
func (h *Handler) searchCandidateBrands(ctx context.Context, athlete *models.AthleteProfile, industry string) ([]models.BrandProfile, error) {
	filterClauses := []interface{}{
		map[string]interface{}{
			"range": map[string]interface{}{
				"min_gpa": map[string]interface{}{"lte": athlete.GPA},
			},
		},
		map[string]interface{}{
			"range": map[string]interface{}{
				"min_followers": map[string]interface{}{"lte": athlete.TotalFollowers},
			},
		},
	}
	if industry != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"industry": strings.ToLower(industry)},
		})
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": filterClauses,
			},
		},
		"size": h.config.CandidatePool,
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{h.config.BrandIndex},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, h.es)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source brandDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	brands := make([]models.BrandProfile, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		brands = append(brands, hit.Source.toProfile())
	}
	return brands, nil
}

// brandDoc mirrors the snake_case document schema of the brand index.
type brandDoc struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Industry       string   `json:"industry"`
	Verified       bool     `json:"verified"`
	CompletedDeals int      `json:"completed_deals"`
	AvgDealRating  float64  `json:"avg_deal_rating"`
	MinGPA         float64  `json:"min_gpa"`
	MinFollowers   int      `json:"min_followers"`
	PreferredTypes []string `json:"preferred_deal_types"`
}

func (d brandDoc) toProfile() models.BrandProfile {
	types := make([]models.DealType, 0, len(d.PreferredTypes))
	for _, t := range d.PreferredTypes {
		types = append(types, models.DealType(t))
	}
	return models.BrandProfile{
		ID:             d.ID,
		Name:           d.Name,
		Industry:       d.Industry,
		Verified:       d.Verified,
		CompletedDeals: d.CompletedDeals,
		AvgDealRating:  d.AvgDealRating,
		MinGPA:         d.MinGPA,
		MinFollowers:   d.MinFollowers,
		PreferredTypes: types,
	}
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
