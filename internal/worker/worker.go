package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/redvale-rp/deaddrop/internal/services/queue"
	"github.com/redvale-rp/deaddrop/internal/vendor"
	queuePkg "github.com/redvale-rp/deaddrop/pkg/queue"
)

const (
	pollInterval = 500 * time.Millisecond
	batchSize    = 25
	retryDelay   = 5 * time.Second
)

// Worker drains due drop jobs (reveals, expiry checks) from the
// scheduler queue and dispatches them to the order processor. Several
// workers can run concurrently: claiming a due job removes it from
// the queue, and the processor serializes per actor.
type Worker struct {
	id        string
	queue     *queue.DropQueue
	processor *vendor.OrderProcessor
	log       *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new worker instance
func New(dropQueue *queue.DropQueue, processor *vendor.OrderProcessor, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:        workerID,
		queue:     dropQueue,
		processor: processor,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins processing due jobs until Stop is called
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		case <-ticker.C:
			if err := w.processDueJobs(); err != nil {
				w.log.Error("Error processing due jobs", "error", err, "worker_id", w.id)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

func (w *Worker) processDueJobs() error {
	jobs, err := w.queue.PopDue(w.ctx, time.Now(), batchSize)
	if err != nil {
		return fmt.Errorf("failed to pop due jobs: %w", err)
	}

	for _, job := range jobs {
		w.dispatch(job)
	}
	return nil
}

// dispatch runs one job. A failed job is rescheduled rather than
// dropped; staleness is handled inside the processor, so retrying a
// job that no longer applies is harmless.
func (w *Worker) dispatch(job *queuePkg.Job) {
	w.log.Debug("Dispatching job",
		"worker_id", w.id,
		"job_id", job.JobID,
		"type", job.Type,
		"actor", job.Actor,
		"drop_id", job.DropID.String())

	var err error
	switch job.Type {
	case queuePkg.JobTypeReveal:
		err = w.processor.RevealDrop(w.ctx, job)
	case queuePkg.JobTypeExpiryCheck:
		err = w.processor.CheckExpiry(w.ctx, job)
	default:
		w.log.Error("Unknown job type, discarding", "type", job.Type, "job_id", job.JobID)
		return
	}

	if err != nil {
		w.log.Error("Job failed, rescheduling",
			"error", err,
			"worker_id", w.id,
			"job_id", job.JobID,
			"type", job.Type,
			"actor", job.Actor)
		if schedErr := w.queue.Schedule(w.ctx, job, time.Now().Add(retryDelay)); schedErr != nil {
			w.log.Error("Failed to reschedule job", "error", schedErr, "job_id", job.JobID)
		}
	}
}
