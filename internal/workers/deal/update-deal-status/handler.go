// internal/workers/deal/update-deal-status/handler.go
package updatedealstatus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gradeup-workers/internal/common/logger"
	"gradeup-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "update-deal-status"
)

var (
	ErrDealNotFound          = errors.New("DEAL_NOT_FOUND")
	ErrInvalidDealTransition = errors.New("INVALID_DEAL_TRANSITION")
	ErrDatabaseUpdateFailed  = errors.New("DATABASE_INSERT_FAILED")
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
		errorCode := "UNKNOWN_ERROR"
		switch {
		case errors.Is(err, ErrDealNotFound):
			errorCode = "DEAL_NOT_FOUND"
		case errors.Is(err, ErrInvalidDealTransition):
			errorCode = "INVALID_DEAL_TRANSITION"
		case errors.Is(err, ErrDatabaseUpdateFailed):
			errorCode = "DATABASE_INSERT_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.DealID == "" || input.NewStatus == "" {
		return nil, fmt.Errorf("dealId and newStatus are required")
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrDatabaseUpdateFailed, err)
	}
	defer tx.Rollback()

	var current string
	var athleteID string
	err = tx.QueryRowContext(ctx, `
		SELECT status, athlete_id FROM deals WHERE id = $1 FOR UPDATE`,
		input.DealID).Scan(&current, &athleteID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: deal %s", ErrDealNotFound, input.DealID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetch deal: %v", ErrDatabaseUpdateFailed, err)
	}

	from := models.DealStatus(current)
	to := models.DealStatus(input.NewStatus)
	if !models.CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidDealTransition, from, to)
	}

	updatedAt := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
		UPDATE deals SET status = $1, updated_at = $2 WHERE id = $3`,
		input.NewStatus, updatedAt, input.DealID)
	if err != nil {
		return nil, fmt.Errorf("%w: update deal: %v", ErrDatabaseUpdateFailed, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO deal_events (id, deal_id, from_status, to_status, actor_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), input.DealID, current, input.NewStatus,
		input.ActorID, input.Reason, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: insert deal event: %v", ErrDatabaseUpdateFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrDatabaseUpdateFailed, err)
	}

	// Status changes shift the athlete's workload picture; drop the cached
	// profile so the next score reflects it.
	if athleteID != "" {
		if err := h.redis.Del(ctx, "athlete:profile:"+athleteID).Err(); err != nil {
			h.logger.Warn("failed to invalidate athlete cache", map[string]interface{}{
				"athleteId": athleteID,
				"error":     err,
			})
		}
	}

	h.logger.Info("deal status updated", map[string]interface{}{
		"dealId":     input.DealID,
		"fromStatus": current,
		"toStatus":   input.NewStatus,
	})

	return &Output{
		DealID:         input.DealID,
		PreviousStatus: current,
		Status:         input.NewStatus,
		UpdatedAt:      updatedAt,
	}, nil
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
