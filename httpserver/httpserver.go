package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/circleci/etag-demo/o11y"
	"github.com/circleci/etag-demo/system"
)

const (
	defaultNetwork         = "tcp"
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	// Name identifies the server in spans and metrics, eg. "api" or "admin".
	Name    string
	Addr    string
	Handler http.Handler

	// Network is one of "tcp", "tcp4", "tcp6" or "unix". Defaults to tcp.
	Network string
	// ShutdownTimeout bounds how long in flight requests get once Serve is cancelled.
	// Defaults to 10s.
	ShutdownTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Network == "" {
		c.Network = defaultNetwork
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	return c
}

type HTTPServer struct {
	cfg      Config
	listener *trackedListener
	server   *http.Server
}

// New listens on cfg.Addr straight away, so a taken port fails here rather than in Serve.
func New(ctx context.Context, cfg Config) (s *HTTPServer, err error) {
	cfg = cfg.withDefaults()

	_, span := o11y.StartSpan(ctx, "httpserver: listen")
	defer o11y.End(span, &err)
	span.AddField("server_name", cfg.Name)
	span.AddField("network", cfg.Network)

	ln, err := net.Listen(cfg.Network, cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s %q: %w", cfg.Network, cfg.Addr, err)
	}
	span.AddField("address", ln.Addr().String())

	return &HTTPServer{
		cfg:      cfg,
		listener: &trackedListener{Listener: ln, name: cfg.Name},
		server: &http.Server{
			Handler:           cfg.Handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       55 * time.Second,
			WriteTimeout:      55 * time.Second,
			// requests inherit the o11y provider from ctx
			BaseContext: func(net.Listener) context.Context { return ctx },
		},
	}, nil
}

// Serve blocks until ctx is done, then shuts down, waiting up to ShutdownTimeout for
// in flight requests.
func (s *HTTPServer) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.server.Serve(s.listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		return s.shutdown()
	})
	return g.Wait()
}

func (s *HTTPServer) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s server shutdown: %w", s.cfg.Name, err)
	}
	return nil
}

func (s *HTTPServer) MetricsProducer() system.MetricProducer {
	return s.listener
}

// Addr is the bound address, with the real port when Config.Addr asked for port 0.
func (s *HTTPServer) Addr() string {
	return s.listener.Addr().String()
}
