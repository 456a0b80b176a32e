// internal/workers/athlete/check-athlete-verification/handler.go
package checkathleteverification

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gradeup-workers/internal/common/logger"
	"gradeup-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "check-athlete-verification"
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
		h.failJob(client, job, "ATHLETE_NOT_FOUND", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	var athleteID string
	var enrollment, sport, grades bool

	if input.AthleteProfile != nil {
		athleteID = input.AthleteProfile.ID
		enrollment = input.AthleteProfile.EnrollmentVerified
		sport = input.AthleteProfile.SportVerified
		grades = input.AthleteProfile.GradesVerified
	} else {
		if input.AthleteID == "" {
			return nil, fmt.Errorf("athleteId or athleteProfile is required")
		}
		athleteID = input.AthleteID

		flags, err := h.getVerificationFlags(ctx, athleteID)
		if err != nil {
			return nil, fmt.Errorf("fetch verification status: %w", err)
		}
		enrollment, sport, grades = flags.Enrollment, flags.Sport, flags.Grades
	}

	var missing []string
	if !enrollment {
		missing = append(missing, "enrollment")
	}
	if !sport {
		missing = append(missing, "sport")
	}
	if !grades {
		missing = append(missing, "grades")
	}

	verification := models.AthleteVerification{
		AthleteID:          athleteID,
		EnrollmentVerified: enrollment,
		SportVerified:      sport,
		GradesVerified:     grades,
		FullyVerified:      len(missing) == 0,
		VerifiedAt:         time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Info("verification checked", map[string]interface{}{
		"athleteId":     athleteID,
		"fullyVerified": verification.FullyVerified,
		"missing":       missing,
	})

	return &Output{Verification: verification, Missing: missing}, nil
}

// verificationFlags is the cached shape; it is deliberately distinct from
// the athlete:profile:<id> entry the deal workers share.
type verificationFlags struct {
	Enrollment bool `json:"enrollment"`
	Sport      bool `json:"sport"`
	Grades     bool `json:"grades"`
}

func (h *Handler) getVerificationFlags(ctx context.Context, athleteID string) (*verificationFlags, error) {
	cacheKey := "athlete:verification:" + athleteID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var flags verificationFlags
		if err := json.Unmarshal([]byte(val), &flags); err == nil {
			return &flags, nil
		}
	}

	var flags verificationFlags
	err := h.db.QueryRowContext(ctx, `
		SELECT enrollment_verified, sport_verified, grades_verified
		FROM athletes WHERE id = $1`, athleteID).
		Scan(&flags.Enrollment, &flags.Sport, &flags.Grades)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(flags)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &flags, nil
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
