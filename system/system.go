package system

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/circleci/etag-demo/o11y"
	"github.com/circleci/etag-demo/termination"
)

type System struct {
	services        []func(context.Context) error
	healthChecks    []HealthChecker
	metricProducers []MetricProducer
	cleanups        []func(ctx context.Context) error
}

func New() *System {
	return &System{}
}

var terminationTestHook = termination.Handle

// Run starts every service and blocks until one of them fails or the process is terminated,
// in which case termination.ErrTerminated is returned.
func (r *System) Run(ctx context.Context, delay time.Duration) (err error) {
	ctx, uptimeSpan := o11y.StartSpan(ctx, "system: run")
	defer o11y.End(uptimeSpan, &err)
	uptimeSpan.RecordMetric(o11y.Timing("system.run", "result"))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return terminationTestHook(ctx, delay)
	})

	for _, f := range r.services {
		f := f
		g.Go(func() error {
			return f(ctx)
		})
	}

	if len(r.metricProducers) > 0 {
		g.Go(metricsReporter(ctx, r.metricProducers))
	}

	return g.Wait()
}

func (r *System) AddService(s func(ctx context.Context) error) {
	r.services = append(r.services, s)
}

func (r *System) AddHealthCheck(h HealthChecker) {
	r.healthChecks = append(r.healthChecks, h)
}

func (r *System) AddMetrics(m MetricProducer) {
	r.metricProducers = append(r.metricProducers, m)
}

func (r *System) AddCleanup(c func(ctx context.Context) error) {
	r.cleanups = append(r.cleanups, c)
}

func (r *System) HealthChecks() []HealthChecker {
	return r.healthChecks
}

// Cleanup runs the cleanups in reverse order of registration.
func (r *System) Cleanup(ctx context.Context) {
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		err := r.cleanups[i](ctx)
		if err != nil {
			o11y.LogError(ctx, "system: cleanup error", err)
		}
	}
}
