package sim

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/rigidsim/internal/physics"
)

// Factory builds a fresh, independent scene with its drivers for each run.
type Factory func() (*physics.Scene, []Driver, error)

// Ensemble runs scenes in parallel. Every run gets its own scene from a
// factory; scenes are never shared.
type Ensemble struct {
	factory    Factory
	newMetrics func() []Metric
	limit      int
	log        *slog.Logger
}

func NewEnsemble(factory Factory, limit int) *Ensemble {
	return &Ensemble{
		factory: factory,
		limit:   limit,
		log:     slog.New(slog.DiscardHandler),
	}
}

// WithMetrics sets a constructor for per-run metrics. Metrics are stateful, so
// each run needs its own set.
func (e *Ensemble) WithMetrics(fn func() []Metric) *Ensemble {
	e.newMetrics = fn
	return e
}

func (e *Ensemble) WithLogger(l *slog.Logger) *Ensemble {
	if l != nil {
		e.log = l
	}
	return e
}

// Job is one run of an ensemble: the scene to build and the config to run it
// under.
type Job struct {
	Build  Factory
	Config Config
	// Metrics, when set, builds this run's metrics from its fresh scene and
	// replaces the ensemble-wide set.
	Metrics func(*physics.Scene) []Metric
}

// Run executes one run of the ensemble's scene per config and returns results
// in config order. The first error cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, cfgs []Config) ([]*Result, error) {
	jobs := make([]Job, len(cfgs))
	for i, cfg := range cfgs {
		jobs[i] = Job{Build: e.factory, Config: cfg}
	}
	return e.RunJobs(ctx, jobs)
}

// RunJobs is Run for runs that each build their own scene.
func (e *Ensemble) RunJobs(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			if job.Build == nil {
				return fmt.Errorf("run %d: %w", i, ErrNoFactory)
			}
			scene, drivers, err := job.Build()
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			defer scene.Close()

			s := New(drivers...).WithLogger(e.log.With("run", i))
			switch {
			case job.Metrics != nil:
				for _, m := range job.Metrics(scene) {
					s.AddMetric(m)
				}
			case e.newMetrics != nil:
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, scene, job.Config)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
