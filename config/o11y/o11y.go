// Package o11y builds the o11y provider from service configuration: honeycomb tracing
// with local output on stderr, statsd metrics and rollbar panic reporting.
package o11y

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/rollbar/rollbar-go"

	"github.com/circleci/etag-demo/config/secret"
	"github.com/circleci/etag-demo/o11y"
	"github.com/circleci/etag-demo/o11y/honeycomb"
)

type Config struct {
	Statsd            string
	RollbarToken      secret.String
	RollbarEnv        string
	RollbarServerRoot string
	HoneycombEnabled  bool
	HoneycombDataset  string
	HoneycombKey      secret.String
	SampleTraces      bool
	SampleKeyFunc     func(map[string]interface{}) string
	SampleRates       map[string]int
	Format            string
	Version           string
	Service           string
	StatsNamespace    string

	// Optional
	Mode                    string
	Debug                   bool
	RollbarDisabled         bool
	StatsdTelemetryDisabled bool
	// Writer receives the formatted spans, defaults to stderr
	Writer io.Writer
}

// DefaultSampleRates keeps one in a thousand healthy admin checks.
var DefaultSampleRates = map[string]int{
	"admin /live 200":  1000,
	"admin /ready 200": 1000,
}

// Setup returns a context carrying the configured provider and the func that flushes and
// closes it.
func Setup(ctx context.Context, o Config) (context.Context, func(context.Context), error) {
	hc := honeycombConfig(o)
	if err := hc.Validate(); err != nil {
		return nil, nil, err
	}

	hostname, _ := os.Hostname()

	metrics, err := statsdClient(o, hostname)
	if err != nil {
		return nil, nil, err
	}
	hc.Metrics = metrics

	var p o11y.Provider = honeycomb.New(hc)
	p.AddGlobalField("service", o.Service)
	p.AddGlobalField("version", o.Version)
	if o.Mode != "" {
		p.AddGlobalField("mode", o.Mode)
	}

	if o.RollbarToken != "" {
		rb := rollbar.NewAsync(o.RollbarToken.Raw(), o.RollbarEnv, o.Version, hostname, o.RollbarServerRoot)
		rb.SetEnabled(!o.RollbarDisabled)
		rb.Message(rollbar.INFO, "Deployment")
		p = rollbarProvider{Provider: p, client: rb}
	}

	return o11y.WithProvider(ctx, p), p.Close, nil
}

func statsdClient(o Config, hostname string) (o11y.ClosableMetricsProvider, error) {
	if o.Statsd == "" {
		return &statsd.NoOpClient{}, nil
	}

	tags := []string{
		"service:" + o.Service,
		"version:" + o.Version,
		"hostname:" + hostname,
	}
	if o.Mode != "" {
		tags = append(tags, "mode:"+o.Mode)
	}
	opts := []statsd.Option{
		statsd.WithNamespace(o.StatsNamespace),
		statsd.WithTags(tags),
	}
	if o.StatsdTelemetryDisabled {
		opts = append(opts, statsd.WithoutTelemetry())
	}

	c, err := statsd.New(o.Statsd, opts...)
	if err != nil {
		return nil, fmt.Errorf("statsd: %w", err)
	}
	return c, nil
}

// rollbarProvider reports panics to rollbar, see o11y.HandlePanic.
type rollbarProvider struct {
	o11y.Provider
	client *rollbar.Client
}

func (p rollbarProvider) RollbarClient() *rollbar.Client {
	return p.client
}

func (p rollbarProvider) Close(ctx context.Context) {
	p.Provider.Close(ctx)
	_ = p.client.Close()
}

func honeycombConfig(o Config) honeycomb.Config {
	keyFunc := o.SampleKeyFunc
	if keyFunc == nil {
		// matches the DefaultSampleRates keys
		keyFunc = func(fields map[string]interface{}) string {
			return fmt.Sprintf("%s %s %v",
				fields["http.server_name"],
				fields["http.route"],
				fields["http.status_code"],
			)
		}
	}
	rates := o.SampleRates
	if rates == nil {
		rates = DefaultSampleRates
	}

	return honeycomb.Config{
		Dataset:       o.HoneycombDataset,
		Key:           o.HoneycombKey.Raw(),
		Format:        o.Format,
		Writer:        o.Writer,
		SendTraces:    o.HoneycombEnabled,
		SampleTraces:  o.SampleTraces,
		SampleKeyFunc: keyFunc,
		SampleRates:   rates,
		ServiceName:   o.Service,
		Debug:         o.Debug,
	}
}
