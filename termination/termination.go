// Package termination turns process signals into a clean shutdown error.
package termination

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/circleci/etag-demo/o11y"
)

var ErrTerminated = errors.New("terminated")

// Handle blocks until the process is signalled or ctx is done. After a signal it waits for
// delay, so load balancers can stop routing to us, then returns ErrTerminated.
func Handle(ctx context.Context, delay time.Duration) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		o11y.Log(ctx, "termination: signal received",
			o11y.Field("signal", sig.String()),
			o11y.Field("delay", delay.String()),
		)
	case <-ctx.Done():
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return ErrTerminated
}
