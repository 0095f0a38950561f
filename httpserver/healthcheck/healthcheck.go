package healthcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hellofresh/health-go/v4"

	"github.com/circleci/etag-demo/httpserver/ginrouter"
	"github.com/circleci/etag-demo/system"
)

const checkTimeout = 5 * time.Second

type API struct {
	router *gin.Engine
}

func New(ctx context.Context, checked []system.HealthChecker) (*API, error) {
	live, err := health.New()
	if err != nil {
		return nil, fmt.Errorf("liveness checks: %w", err)
	}
	ready, err := health.New()
	if err != nil {
		return nil, fmt.Errorf("readiness checks: %w", err)
	}

	for _, c := range checked {
		name, readyCheck, liveCheck := c.HealthChecks()
		if err := register(ready, name, readyCheck); err != nil {
			return nil, err
		}
		if err := register(live, name, liveCheck); err != nil {
			return nil, err
		}
	}

	r := ginrouter.Default(ctx, "admin")
	r.GET("/live", gin.WrapH(live.Handler()))
	r.GET("/ready", gin.WrapH(ready.Handler()))
	r.GET("/debug/pprof/*profile", profile)

	return &API{router: r}, nil
}

func (a *API) Handler() http.Handler {
	return a.router
}

// register adds check under name, a nil check is skipped.
func register(h *health.Health, name string, check func(context.Context) error) error {
	if check == nil {
		return nil
	}
	err := h.Register(health.Config{
		Name:    name,
		Timeout: checkTimeout,
		Check:   check,
	})
	if err != nil {
		return fmt.Errorf("register %q health check: %w", name, err)
	}
	return nil
}

// profile dispatches to the special pprof handlers, anything else is served by the index
// which knows every runtime profile by name.
func profile(c *gin.Context) {
	switch strings.Trim(c.Param("profile"), "/") {
	case "cmdline":
		pprof.Cmdline(c.Writer, c.Request)
	case "profile":
		pprof.Profile(c.Writer, c.Request)
	case "symbol":
		pprof.Symbol(c.Writer, c.Request)
	case "trace":
		pprof.Trace(c.Writer, c.Request)
	default:
		pprof.Index(c.Writer, c.Request)
	}
}
