// Package setup contains the wiring shared by the commands
package setup

import (
	"context"
	_ "time/tzdata" // include embedded timezone data

	"github.com/circleci/etag-demo/accesslog"
	"github.com/circleci/etag-demo/config/o11y"
	"github.com/circleci/etag-demo/config/secret"
	o11yp "github.com/circleci/etag-demo/o11y"
	"github.com/circleci/etag-demo/system"
)

type CLI struct {
	AdminAddr string `env:"ADMIN_ADDR" default:":3101" help:"The address for the admin api to listen on"`

	O11yStatsd           string        `name:"o11y-statsd" env:"O11Y_STATSD" help:"Address to send statsd metrics, empty disables metrics"`
	O11yHoneycombEnabled bool          `name:"o11y-honeycomb" env:"O11Y_HONEYCOMB" help:"Send traces to honeycomb"`
	O11yHoneycombDataset string        `name:"o11y-honeycomb-dataset" env:"O11Y_HONEYCOMB_DATASET" default:"etag-demo"`
	O11yHoneycombKey     secret.String `name:"o11y-honeycomb-key" env:"O11Y_HONEYCOMB_KEY"`
	O11yFormat           string        `name:"o11y-format" env:"O11Y_FORMAT" enum:"json,color,text" default:"text" help:"Format used for stderr logging"`
	O11yRollbarToken     secret.String `name:"o11y-rollbar-token" env:"O11Y_ROLLBAR_TOKEN"`
	O11yRollbarEnv       string        `name:"o11y-rollbar-env" env:"O11Y_ROLLBAR_ENV" default:"development"`
}

func LoadO11y(version, mode string, cli CLI) (context.Context, func(context.Context), error) {
	cfg := o11y.Config{
		Statsd:            cli.O11yStatsd,
		RollbarToken:      cli.O11yRollbarToken,
		RollbarEnv:        cli.O11yRollbarEnv,
		RollbarServerRoot: "github.com/circleci/etag-demo",
		HoneycombEnabled:  cli.O11yHoneycombEnabled,
		HoneycombDataset:  cli.O11yHoneycombDataset,
		HoneycombKey:      cli.O11yHoneycombKey,
		Format:            cli.O11yFormat,
		Version:           version,
		Service:           "etag-demo",
		StatsNamespace:    "circleci.etag_demo.",
		Mode:              mode,
	}
	return o11y.Setup(context.Background(), cfg)
}

// LoadAccessLog opens the access log at path and hands its metrics, health and closing
// over to sys.
func LoadAccessLog(ctx context.Context, path string, sys *system.System) (sink *accesslog.Sink, err error) {
	_, span := o11yp.StartSpan(ctx, "setup: load-access-log")
	defer o11yp.End(span, &err)
	span.AddField("path", path)

	sink, err = accesslog.Open(path)
	if err != nil {
		return nil, err
	}

	sys.AddMetrics(sink)
	sys.AddHealthCheck(sink)
	sys.AddCleanup(func(context.Context) error {
		return sink.Close()
	})
	return sink, nil
}
