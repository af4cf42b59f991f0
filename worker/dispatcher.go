// Package worker routes job activations from the external process engine to
// their handlers and reports outcomes back. Activations arrive at-least-once
// and possibly out of order; handlers rely on storage-layer idempotency, not
// dispatch-level deduplication.
package worker

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"certflow/engine"
	"certflow/metrics"
)

// Handler processes one job activation and returns the variables the engine
// resumes with. A non-nil error fails the job back to the engine.
type Handler func(ctx context.Context, job engine.Job) (engine.Variables, error)

// Dispatcher fans job activations out to a fixed pool of workers.
type Dispatcher struct {
	completer engine.Completer
	handlers  map[string]Handler
	workers   int
	logger    zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers sets the pool size.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

func NewDispatcher(completer engine.Completer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		completer: completer,
		handlers:  make(map[string]Handler),
		workers:   runtime.NumCPU(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle registers the handler for a job type. Later registrations replace
// earlier ones. Not safe to call once Run has started.
func (d *Dispatcher) Handle(jobType string, h Handler) {
	d.handlers[jobType] = h
}

// Run consumes the activation stream until it closes or ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context, jobs <-chan engine.Job) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case job, ok := <-jobs:
					if !ok {
						return nil
					}
					d.dispatch(ctx, job)
				}
			}
		})
	}
	return g.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, job engine.Job) {
	log := d.logger.With().Int64("job_key", job.Key).Str("job_type", job.Type).Logger()

	h, ok := d.handlers[job.Type]
	if !ok {
		log.Error().Msg("no handler for job type")
		d.fail(ctx, job, "no handler registered for "+job.Type, log)
		return
	}

	vars, err := h(ctx, job)
	if err != nil {
		log.Error().Err(err).Msg("job failed")
		d.fail(ctx, job, err.Error(), log)
		return
	}

	if err := d.completer.CompleteJob(ctx, job.Key, vars); err != nil {
		log.Error().Err(err).Msg("report completion")
		return
	}
	metrics.JobsCompleted.WithLabelValues(job.Type).Inc()
	log.Debug().Msg("job completed")
}

func (d *Dispatcher) fail(ctx context.Context, job engine.Job, reason string, log zerolog.Logger) {
	metrics.JobsFailed.WithLabelValues(job.Type).Inc()
	if err := d.completer.FailJob(ctx, job.Key, reason); err != nil {
		log.Error().Err(err).Msg("report failure")
	}
}
