package jobstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Handler runs one job kind and returns a human-readable summary.
type Handler func(ctx context.Context, payload map[string]string) (string, error)

// Executor pulls jobs from the store and dispatches them by kind.
type Executor struct {
	store    *Store
	handlers map[string]Handler
	logger   zerolog.Logger
}

func NewExecutor(store *Store, logger zerolog.Logger) *Executor {
	return &Executor{
		store:    store,
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register binds a handler to a job kind, replacing any previous one.
func (e *Executor) Register(kind string, handler Handler) {
	e.handlers[kind] = handler
}

// RunOnce executes a single job by id. A missing handler fails the job
// without running anything. The handler's error fails the job, every
// other path completes it with the handler summary.
func (e *Executor) RunOnce(ctx context.Context, jobID string) error {
	job, err := e.store.Get(jobID)
	if err != nil {
		return err
	}

	handler, ok := e.handlers[job.Kind]
	if !ok {
		msg := fmt.Sprintf("no handler for job kind: %s", job.Kind)
		e.logger.Warn().Str("job_id", job.JobID).Str("kind", job.Kind).Msg("job has no handler")
		return e.store.SetFailed(job.JobID, msg)
	}

	payload, err := job.Payload()
	if err != nil {
		return e.store.SetFailed(job.JobID, err.Error())
	}

	if err := e.store.SetRunning(job.JobID); err != nil {
		return err
	}
	e.logger.Info().Str("job_id", job.JobID).Str("kind", job.Kind).Msg("job started")

	summary, err := handler(ctx, payload)
	if err != nil {
		e.logger.Error().Err(err).Str("job_id", job.JobID).Msg("job failed")
		return e.store.SetFailed(job.JobID, err.Error())
	}

	e.logger.Info().Str("job_id", job.JobID).Msg("job completed")
	return e.store.SetCompleted(job.JobID, summary)
}

// DrainQueued runs every queued job in submission order and reports how
// many were processed.
func (e *Executor) DrainQueued(ctx context.Context) (int, error) {
	processed := 0
	for {
		job, err := e.store.NextQueued()
		if err != nil {
			return processed, err
		}
		if job == nil {
			return processed, nil
		}
		if err := e.RunOnce(ctx, job.JobID); err != nil {
			return processed, err
		}
		processed++
	}
}
