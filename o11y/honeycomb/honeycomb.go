// Package honeycomb implements o11y on the honeycomb beeline.
//
// Spans are written to a local writer, stderr by default, as json or text, and can also be
// shipped to honeycomb.
package honeycomb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/honeycombio/beeline-go"
	"github.com/honeycombio/beeline-go/client"
	"github.com/honeycombio/beeline-go/propagation"
	"github.com/honeycombio/beeline-go/trace"
	"github.com/honeycombio/dynsampler-go"
	"github.com/honeycombio/libhoney-go"
	"github.com/honeycombio/libhoney-go/transmission"

	"github.com/circleci/etag-demo/o11y"
)

type Config struct {
	Host    string
	Dataset string
	Key     string
	// Format of the local output, one of json, text, color or none.
	Format string
	Writer io.Writer
	// SendTraces ships spans to honeycomb as well as the local writer.
	SendTraces bool
	// Sender replaces the honeycomb transmission, for tests.
	Sender transmission.Sender

	SampleTraces  bool
	SampleKeyFunc func(map[string]interface{}) string
	SampleRates   map[string]int

	Metrics     o11y.ClosableMetricsProvider
	ServiceName string
	Debug       bool
}

func (c *Config) Validate() error {
	if c.SendTraces && c.Key == "" && c.Sender == nil {
		return errors.New("honeycomb_key key required for honeycomb")
	}
	return nil
}

func (c *Config) sender() transmission.Sender {
	w := c.Writer
	if w == nil {
		w = os.Stderr
	}

	s := &MultiSender{}
	if c.SendTraces {
		remote := c.Sender
		if remote == nil {
			remote = &transmission.Honeycomb{
				MaxBatchSize:         libhoney.DefaultMaxBatchSize,
				BatchTimeout:         libhoney.DefaultBatchTimeout,
				MaxConcurrentBatches: libhoney.DefaultMaxConcurrentBatches,
				PendingWorkCapacity:  libhoney.DefaultPendingWorkCapacity,
				UserAgentAddition:    c.ServiceName,
			}
		}
		s.Senders = append(s.Senders, remote)
	}

	switch c.Format {
	case "none":
	case "text":
		s.Senders = append(s.Senders, NewTextSender(w, false))
	case "color", "colour":
		s.Senders = append(s.Senders, NewTextSender(w, true))
	default:
		s.Senders = append(s.Senders, &transmission.WriterSender{W: w})
	}
	return s
}

type honeycomb struct {
	metrics o11y.ClosableMetricsProvider
}

// New initialises the beeline, which is process global, and returns a provider for it.
func New(conf Config) o11y.Provider {
	// beeline ignores this error in its own constructor too
	c, _ := libhoney.NewClient(libhoney.ClientConfig{
		APIKey:       conf.Key,
		Dataset:      conf.Dataset,
		APIHost:      conf.Host,
		Transmission: conf.sender(),
	})

	bc := beeline.Config{
		Client:      c,
		Debug:       conf.Debug,
		WriteKey:    conf.Key,
		ServiceName: conf.ServiceName,
	}

	emit := metricsHook(conf.Metrics)
	if conf.SampleTraces {
		sampler := &TraceSampler{
			KeyFunc: conf.SampleKeyFunc,
			Sampler: &dynsampler.Static{Default: 1, Rates: conf.SampleRates},
		}
		// dropped spans never reach the presend hook, so metrics go out before sampling
		bc.SamplerHook = func(fields map[string]interface{}) (bool, int) {
			emit(fields)
			return sampler.Hook(fields)
		}
	} else {
		bc.PresendHook = emit
	}

	beeline.Init(bc)

	return &honeycomb{metrics: conf.Metrics}
}

func (h *honeycomb) AddGlobalField(key string, val interface{}) {
	mustValidateKey(key)
	client.AddField(key, val)
}

func (h *honeycomb) StartSpan(ctx context.Context, name string) (context.Context, o11y.Span) {
	parent := trace.GetSpanFromContext(ctx)
	if parent == nil {
		return h.StartTrace(ctx, name, nil)
	}
	ctx, s := parent.CreateAsyncChild(ctx)
	s.AddField("name", name)
	return ctx, wrap(s)
}

// StartTrace reads the honeycomb propagation header, falling back to w3c traceparent.
func (h *honeycomb) StartTrace(ctx context.Context, name string, hdr http.Header) (context.Context, o11y.Span) {
	var prop *propagation.PropagationContext
	if v := hdr.Get(propagation.TracePropagationHTTPHeader); v != "" {
		prop, _ = propagation.UnmarshalHoneycombTraceContext(v)
	} else if v := hdr.Get(propagation.TraceparentHeader); v != "" {
		_, prop, _ = propagation.UnmarshalW3CTraceContext(ctx, map[string]string{
			propagation.TraceparentHeader: v,
		})
	}

	ctx, tr := trace.NewTrace(ctx, prop)
	root := tr.GetRootSpan()
	root.AddField("name", name)
	return ctx, wrap(root)
}

func (h *honeycomb) GetSpan(ctx context.Context) o11y.Span {
	s := trace.GetSpanFromContext(ctx)
	if s == nil {
		return nil
	}
	return wrap(s)
}

func (h *honeycomb) AddField(ctx context.Context, key string, val interface{}) {
	mustValidateKey(key)
	beeline.AddField(ctx, key, val)
}

func (h *honeycomb) Log(ctx context.Context, name string, fields ...o11y.Pair) {
	_, s := h.StartSpan(ctx, name)
	for _, f := range fields {
		s.AddField(f.Key, f.Value)
	}
	s.End()
}

func (h *honeycomb) MetricsProvider() o11y.MetricsProvider {
	if h.metrics == nil {
		return o11y.FromContext(context.Background()).MetricsProvider()
	}
	return h.metrics
}

func (h *honeycomb) Close(context.Context) {
	beeline.Close()
	if h.metrics != nil {
		_ = h.metrics.Close()
	}
}
