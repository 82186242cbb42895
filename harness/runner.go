// Package harness drives conformance scenarios against guest modules and
// aggregates the results.
package harness

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/snowmelt/abicheck/core"
	"github.com/snowmelt/abicheck/pkg/logging"
	"github.com/snowmelt/abicheck/pkg/metrics"
	"github.com/snowmelt/abicheck/pkg/tracing"
)

// Options configure a Runner.
type Options struct {
	Timeout     time.Duration // per-scenario wall clock limit, 0 means none
	Parallelism int           // concurrent scenario runs, 0 or 1 means sequential
}

// Runner executes scenarios against modules via an engine.
type Runner struct {
	engine  core.Engine
	logger  *logging.Logger
	metrics *metrics.PrometheusMetrics
	tracer  *tracing.Tracer
	opts    Options
}

// NewRunner wires a runner. Metrics may be nil; a nil tracer becomes a
// no-op tracer.
func NewRunner(eng core.Engine, logger *logging.Logger, m *metrics.PrometheusMetrics, tracer *tracing.Tracer, opts Options) *Runner {
	if tracer == nil {
		tracer = tracing.NewNoopTracer()
	}
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	return &Runner{engine: eng, logger: logger, metrics: m, tracer: tracer, opts: opts}
}

// WithTimeout returns a runner identical to r with a different
// per-scenario timeout, for suite entries that carry their own.
func (r *Runner) WithTimeout(d time.Duration) *Runner {
	out := *r
	out.opts.Timeout = d
	return &out
}

// RunModule runs each scenario against the module at path, each in its
// own instance. Reports come back in factory order; a scenario failure is
// recorded in its report rather than returned as an error.
func (r *Runner) RunModule(ctx context.Context, path string, factories []core.ScenarioFactory) []core.Report {
	reports := make([]core.Report, len(factories))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)
	for i, factory := range factories {
		i, factory := i, factory
		g.Go(func() error {
			reports[i] = r.runOne(gctx, path, factory)
			return nil
		})
	}
	// Workers only report; the group never carries an error.
	_ = g.Wait()

	return reports
}

func (r *Runner) runOne(ctx context.Context, path string, factory core.ScenarioFactory) core.Report {
	s := factory()
	report := core.Report{
		Scenario:  s.Name(),
		Module:    path,
		StartedAt: time.Now(),
		Durations: make(map[core.Phase]time.Duration),
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	ctx, span := r.tracer.StartScenarioSpan(ctx, s.Name(), path)
	defer span.End()

	err := r.drive(ctx, s, path, &report)
	report.Pass = err == nil
	report.Err = err

	status := "pass"
	if err != nil {
		status = "fail"
		if kind, ok := core.KindOf(err); ok {
			status = string(kind)
		}
		span.RecordError(err)
	}
	if r.metrics != nil {
		r.metrics.RecordScenario(s.Name(), status)
		for phase, d := range report.Durations {
			r.metrics.RecordPhase(s.Name(), string(phase), d)
		}
	}
	if r.logger != nil {
		r.logger.LogScenario(s.Name(), path, status, time.Since(report.StartedAt))
	}

	return report
}

// drive walks the strictly sequential run:
// load -> compile -> (wasi detect) -> link/instantiate -> call.
func (r *Runner) drive(ctx context.Context, s core.Scenario, path string, report *core.Report) error {
	start := time.Now()
	blob, err := r.engine.Load(path)
	report.Durations[core.PhaseLoad] = time.Since(start)
	if err != nil {
		return err
	}

	start = time.Now()
	mod, err := r.engine.Compile(ctx, blob)
	report.Durations[core.PhaseCompile] = time.Since(start)
	if err != nil {
		return err
	}
	defer mod.Close(ctx)
	report.WASI = mod.WASI()

	start = time.Now()
	inst, err := mod.Instantiate(ctx, s.Imports())
	report.Durations[core.PhaseLink] = time.Since(start)
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	start = time.Now()
	err = s.Drive(ctx, inst)
	report.Durations[core.PhaseCall] = time.Since(start)
	return err
}

// AllPassed reports whether every report passed.
func AllPassed(reports []core.Report) bool {
	for _, rep := range reports {
		if !rep.Pass {
			return false
		}
	}
	return len(reports) > 0
}
