package healthcheck

import (
	"context"
	"fmt"

	"github.com/circleci/etag-demo/httpserver"
	"github.com/circleci/etag-demo/system"
)

// Load builds the admin API from the health checks already registered with sys and adds
// its server to sys. Call it after every checker has been added.
func Load(ctx context.Context, addr string, sys *system.System) (*httpserver.HTTPServer, error) {
	healthAPI, err := New(ctx, sys.HealthChecks())
	if err != nil {
		return nil, fmt.Errorf("health check API: %w", err)
	}

	return httpserver.Load(ctx, httpserver.Config{
		Name:    "admin",
		Addr:    addr,
		Handler: healthAPI.Handler(),
	}, sys)
}
