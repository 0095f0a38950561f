package worker

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/circleci/etag-demo/o11y"
)

type Config struct {
	Name string
	// Schedule gives the pause after each run. Returning backoff.Stop ends the loop.
	// Defaults to a pause of ten seconds.
	Schedule backoff.BackOff
	// Timeout bounds a single run, default one minute.
	Timeout time.Duration
	Func    func(ctx context.Context) error

	sleep func(ctx context.Context, d time.Duration) bool
}

// Run calls Func straight away and then after every pause from the schedule until ctx is
// done. A run that fails or panics is traced and the loop carries on.
func Run(ctx context.Context, cfg Config) {
	cfg = withDefaults(cfg)
	cfg.Schedule.Reset()

	for ctx.Err() == nil {
		_ = runOnce(ctx, cfg)

		pause := cfg.Schedule.NextBackOff()
		if pause == backoff.Stop || !cfg.sleep(ctx, pause) {
			return
		}
	}
}

func withDefaults(cfg Config) Config {
	if cfg.Schedule == nil {
		cfg.Schedule = backoff.NewConstantBackOff(10 * time.Second)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.sleep == nil {
		cfg.sleep = sleep
	}
	return cfg
}

// sleep reports false if ctx finished before d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// runOnce is not cancelled with ctx so a run in progress at shutdown can finish.
func runOnce(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Timeout)
	defer cancel()

	ctx, span := o11y.StartSpan(ctx, "worker: "+cfg.Name)
	defer o11y.End(span, &err)
	span.AddField("worker", cfg.Name)
	span.RecordMetric(o11y.Timing("worker.run", "app.worker", "result"))

	defer func() {
		if r := recover(); r != nil {
			err = o11y.HandlePanic(ctx, span, r, nil)
		}
	}()

	return cfg.Func(ctx)
}
