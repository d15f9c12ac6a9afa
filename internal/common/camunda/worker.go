// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"compatibility-workers/internal/common/errors"
	"compatibility-workers/internal/common/logger"
	"compatibility-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// jobTimeoutMargin keeps a job locked a little longer than its handler may run.
const jobTimeoutMargin = 10 * time.Second

// JobHandler reports the outcome to Zeebe itself and returns the error it reported.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// JobRecorder receives one call per finished job.
type JobRecorder interface {
	RecordJob(ctx context.Context, taskType, status string, duration time.Duration)
}

type WorkerOptions struct {
	MaxJobsActive int
	// HandlerTimeout is the longest a handler may run; the job lock is held slightly longer.
	HandlerTimeout time.Duration
}

type CamundaWorker struct {
	worker   worker.JobWorker
	handler  JobHandler
	recorder JobRecorder
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. recorder may be nil.
func NewWorker(
	client zbc.Client,
	taskType string,
	opts WorkerOptions,
	handler JobHandler,
	recorder JobRecorder,
	log logger.Logger,
) *CamundaWorker {
	w := &CamundaWorker{
		handler:  handler,
		recorder: recorder,
		logger:   log.WithFields(map[string]interface{}{"taskType": taskType}),
		taskType: taskType,
	}

	w.worker = client.NewJobWorker().
		JobType(taskType).
		Handler(w.handle).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.HandlerTimeout + jobTimeoutMargin).
		Open()

	w.logger.Info("worker started", map[string]interface{}{
		"maxJobsActive":    opts.MaxJobsActive,
		"handlerTimeoutMs": opts.HandlerTimeout.Milliseconds(),
	})

	return w
}

func (w *CamundaWorker) handle(client worker.JobClient, job entities.Job) {
	metrics.WorkerJobsActive.WithLabelValues(w.taskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(w.taskType).Dec()

	start := time.Now()
	err := w.handler.Handle(client, job)
	duration := time.Since(start)

	status := "completed"
	if err != nil {
		status = "failed"
		code := string(errors.CodeOf(err))
		if code == "" {
			code = "CANCELLED"
		}
		metrics.WorkerJobsFailed.WithLabelValues(w.taskType, code).Inc()
	} else {
		metrics.WorkerJobsCompleted.WithLabelValues(w.taskType).Inc()
	}

	if w.recorder != nil {
		w.recorder.RecordJob(context.Background(), w.taskType, status, duration)
	}
}

// Stop closes the worker and waits for in-flight handlers to return.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
