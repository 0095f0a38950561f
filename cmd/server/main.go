package main

import (
	"context"
	"errors"
	"fmt"
	"log" //nolint:depguard // non-o11y log is allowed for a top-level fatal
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"

	"github.com/circleci/etag-demo/accesslog"
	"github.com/circleci/etag-demo/api"
	"github.com/circleci/etag-demo/cmd"
	"github.com/circleci/etag-demo/cmd/setup"
	"github.com/circleci/etag-demo/etag"
	"github.com/circleci/etag-demo/httpserver"
	"github.com/circleci/etag-demo/httpserver/healthcheck"
	"github.com/circleci/etag-demo/o11y"
	"github.com/circleci/etag-demo/system"
	"github.com/circleci/etag-demo/termination"
)

type cli struct {
	setup.CLI

	ShutdownDelay time.Duration `env:"SHUTDOWN_DELAY" default:"0s" help:"Delay shutdown by this amount" hidden:""`
	Port          int           `env:"PORT" default:"3001" help:"The port for the API to listen on"`

	Greeting  string `env:"GREETING" default:"Hello world!" help:"Body of / and /hello"`
	RandomMax int    `env:"RANDOM_MAX" default:"20" help:"Upper bound of /random"`

	AccessLog          string `env:"ACCESS_LOG" default:"log/access.log" help:"File the access log is appended to, empty disables it"`
	AccessLogSkipBelow int    `env:"ACCESS_LOG_SKIP_BELOW" default:"0" help:"Do not log responses with a status below this"`
	AccessLogImmediate bool   `env:"ACCESS_LOG_IMMEDIATE" help:"Log on request arrival instead of response completion"`
	DevLog             bool   `env:"DEV_LOG" default:"true" help:"Write a short summary of each request to stdout"`
	DevLogColour       bool   `env:"DEV_LOG_COLOUR" default:"true" help:"Colour the status in the stdout summary"`
	ETagCacheSize      int    `env:"ETAG_CACHE_SIZE" default:"128" help:"Number of entity tags to memoise"`
}

func main() {
	err := run(cmd.Version, cmd.Date)
	if err != nil && !errors.Is(err, termination.ErrTerminated) {
		log.Fatal("Unexpected Error: ", err)
	}
	log.Println("exited 0")
}

func run(version, date string) (err error) {
	cli := cli{}
	kong.Parse(&cli)

	ctx, o11yCleanup, err := setup.LoadO11y(version, "server", cli.CLI)
	if err != nil {
		return err
	}
	defer o11yCleanup(ctx)

	ctx, runSpan := o11y.StartSpan(ctx, "main: run")
	defer o11y.End(runSpan, &err)

	o11y.Log(ctx, "starting server",
		o11y.Field("version", version),
		o11y.Field("date", date),
	)

	sys := system.New()
	defer sys.Cleanup(ctx)

	err = loadAPI(ctx, cli, sys)
	if err != nil {
		return err
	}

	// Should be last so it collects all the health checks
	_, err = healthcheck.Load(ctx, cli.AdminAddr, sys)
	if err != nil {
		return err
	}

	return sys.Run(ctx, cli.ShutdownDelay)
}

func loadAPI(ctx context.Context, cli cli, sys *system.System) error {
	mw, err := loadAccessLog(ctx, cli, sys)
	if err != nil {
		return err
	}

	tags, err := etag.NewCache(cli.ETagCacheSize)
	if err != nil {
		return fmt.Errorf("etag cache: %w", err)
	}

	a := api.New(ctx, api.Options{
		Greeting:   cli.Greeting,
		RandomMax:  cli.RandomMax,
		Middleware: mw,
		Tags:       tags,
	})

	srv, err := httpserver.Load(ctx, httpserver.Config{
		Name:    "api",
		Addr:    fmt.Sprintf(":%d", cli.Port),
		Handler: a.Handler(),
	}, sys)
	if err != nil {
		return err
	}

	o11y.Log(ctx, "the server is listening", o11y.Field("address", srv.Addr()))
	return nil
}

func loadAccessLog(ctx context.Context, cli cli, sys *system.System) ([]gin.HandlerFunc, error) {
	opts := accesslog.Options{
		SkipBelow: cli.AccessLogSkipBelow,
		Immediate: cli.AccessLogImmediate,
	}

	if cli.AccessLog != "" {
		sink, err := setup.LoadAccessLog(ctx, cli.AccessLog, sys)
		if err != nil {
			return nil, err
		}
		opts.Sink = sink
	}

	if cli.DevLog {
		opts.Dev = os.Stdout
		opts.DevColour = cli.DevLogColour
	}

	if opts.Sink == nil && opts.Dev == nil {
		return nil, nil
	}
	return []gin.HandlerFunc{accesslog.Middleware(opts)}, nil
}
