// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"gradeup-workers/internal/common/metrics"
)

// HandlerFunc is the signature every task handler exposes via Handle.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// OpenWorker registers a job worker for taskType and wraps the handler so
// every worker reports the same active-job and duration metrics.
func OpenWorker(client zbc.Client, taskType string, maxJobsActive int, timeout time.Duration, handler HandlerFunc, log *zap.Logger) worker.JobWorker {
	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		start := time.Now()

		handler(jobClient, job)

		metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(maxJobsActive).
		Timeout(timeout).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Duration("timeout", timeout),
	)
	return jobWorker
}
