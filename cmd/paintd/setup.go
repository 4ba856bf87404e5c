package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/chatpaint/paintd/internal/config"
	"github.com/chatpaint/paintd/internal/errors"
	"github.com/chatpaint/paintd/pkg/catalog"
	"github.com/chatpaint/paintd/pkg/imagecache"
	"github.com/chatpaint/paintd/pkg/metrics"
	"github.com/chatpaint/paintd/pkg/registry"
)

// loadConfig reads path, or paintd.json in the working directory when path
// is empty. Without either, defaults are used.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg and installs it as the
// slog default.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.LogLevel()
	opts := &slog.HandlerOptions{Level: level}

	jsonErrors = cfg.Log.Format == "json"

	var h slog.Handler
	if cfg.Log.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// newSource builds the configured catalog source.
func newSource(cfg *config.Config) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case config.SourceHTTP:
		src := catalog.NewHTTPSource(cfg.Catalog.URL, &http.Client{Timeout: cfg.CatalogTimeout()})
		src.UserIdentifier = cfg.Catalog.UserIdentifier
		return src, nil
	case config.SourceFile:
		return catalog.FileSource{Path: cfg.Catalog.File}, nil
	case config.SourceS3:
		s3 := cfg.Catalog.S3
		return catalog.NewS3Source(nil, s3.Region, s3.Bucket, s3.Key), nil
	}
	return nil, errors.New("P102").WithDetail("catalog.source = " + cfg.Catalog.Source)
}

// app holds the wired components shared by serve and fetch.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	promReg  *prometheus.Registry
	tracing  trace.TracerProvider
	metrics  *metrics.Metrics
	images   *imagecache.Cache
	registry *registry.Registry
	loader   *catalog.Loader
}

func newApp(cfg *config.Config) (*app, error) {
	logger := newLogger(cfg, os.Stderr)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(
		metrics.WithRegistry(promReg),
		metrics.WithNamespace(cfg.Metrics.Namespace),
		metrics.WithConstLabels(prometheus.Labels(cfg.Metrics.Labels)),
	)

	images := imagecache.New(
		&http.Client{Timeout: cfg.ImageTimeout()},
		logger.With("component", "imagecache"),
	)

	reg := registry.New(
		registry.WithImageResolver(images),
		registry.WithObserver(m),
		registry.WithLogger(logger.With("component", "registry")),
	)
	m.TrackRegistry(reg)

	src, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	tracing := otel.GetTracerProvider()
	loader := catalog.NewLoader(src, reg,
		catalog.WithTracer(tracing.Tracer("github.com/chatpaint/paintd/pkg/catalog")),
		catalog.WithRecorder(m),
		catalog.WithLogger(logger.With("component", "catalog")),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		promReg:  promReg,
		tracing:  tracing,
		metrics:  m,
		images:   images,
		registry: reg,
		loader:   loader,
	}, nil
}
