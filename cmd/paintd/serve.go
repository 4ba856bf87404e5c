package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/chatpaint/paintd/internal/config"
	"github.com/chatpaint/paintd/internal/errors"
	"github.com/chatpaint/paintd/pkg/api"
	"github.com/chatpaint/paintd/pkg/eventapi"
	"github.com/chatpaint/paintd/pkg/middleware"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	var (
		listen   string
		noEvents bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the paint registry",
		Long: `Run the paint registry.

serve loads the catalog, refreshes it periodically, follows the live
event stream, and serves lookups over HTTP until interrupted.

Examples:
  paintd serve
  paintd serve --listen=:9090
  paintd serve --config=/etc/paintd.yaml --no-events`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			if noEvents {
				cfg.Events.Enabled = false
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, nil)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&noEvents, "no-events", false, "Do not follow the live event stream")

	return cmd
}

// runServe runs until ctx is done. When ready is non-nil it receives the
// bound listener address once the API is accepting connections.
func runServe(ctx context.Context, cfg *config.Config, ready chan<- string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	logger := a.logger

	go a.loader.Run(ctx, cfg.RefreshInterval())

	if cfg.Catalog.Source == config.SourceFile && cfg.Catalog.Watch {
		go func() {
			if err := a.loader.Watch(ctx, cfg.Catalog.File, 0); err != nil {
				logger.Error("catalog watch stopped", "error", err)
			}
		}()
	}

	if cfg.Events.Enabled {
		client := eventapi.NewClient(eventapi.Config{URL: cfg.Events.URL}, a.registry,
			eventapi.WithRecorder(a.metrics),
			eventapi.WithLogger(logger.With("component", "eventapi")),
		)
		go client.Run(ctx)
	}

	handler := api.NewHandler(a.registry,
		api.WithLogger(logger.With("component", "api")),
		api.WithImages(a.images),
		api.WithMiddleware(
			middleware.OpenTelemetry(
				middleware.WithTracerProvider(a.tracing),
				middleware.WithRequestFilter(func(r *http.Request) bool {
					return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
				}),
			),
			middleware.Prometheus(
				middleware.WithRegistry(a.promReg),
				middleware.WithNamespace(cfg.Metrics.Namespace),
				middleware.WithConstLabels(prometheus.Labels(cfg.Metrics.Labels)),
				middleware.WithBuckets(cfg.Metrics.HTTPBuckets),
			),
			middleware.AccessLog(logger.With("component", "http")),
		),
		api.WithMetricsHandler(promhttp.HandlerFor(a.promReg, promhttp.HandlerOpts{})),
	)

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return errors.New("P160").Wrap(err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	success("Listening on %s", ln.Addr())
	if path := cfg.Path(); path != "" {
		info("config:  %s", path)
	}
	info("catalog: %s", a.loader)
	if cfg.Events.Enabled {
		info("events:  %s", cfg.Events.URL)
	}
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		return errors.New("P160").Wrap(err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		warn("shutdown: %v", err)
		return err
	}
	return nil
}
