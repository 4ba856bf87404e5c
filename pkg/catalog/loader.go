package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chatpaint/paintd/internal/errors"
	"github.com/chatpaint/paintd/pkg/paint"
	"github.com/chatpaint/paintd/pkg/registry"
)

// MaxBodyBytes caps the size of a catalog body.
const MaxBodyBytes = 64 << 20

const tracerName = "github.com/chatpaint/paintd/pkg/catalog"

// Catalog is the decoded catalog body.
type Catalog struct {
	Paints []paint.Record `json:"paints"`
}

// Merger receives decoded catalog records. *registry.Registry satisfies it.
type Merger interface {
	BulkMerge(records []paint.Record) registry.MergeResult
}

// LoadRecorder is notified of every load outcome.
type LoadRecorder interface {
	RecordCatalogLoad(err error)
}

// Loader fetches the catalog from a Source and merges it into a registry.
type Loader struct {
	source   Source
	merger   Merger
	recorder LoadRecorder
	logger   *slog.Logger
	tracer   trace.Tracer
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithRecorder sets the load outcome recorder.
func WithRecorder(r LoadRecorder) LoaderOption {
	return func(ld *Loader) {
		ld.recorder = r
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) LoaderOption {
	return func(ld *Loader) {
		if t != nil {
			ld.tracer = t
		}
	}
}

// NewLoader creates a Loader.
func NewLoader(source Source, merger Merger, opts ...LoaderOption) *Loader {
	ld := &Loader{
		source: source,
		merger: merger,
		logger: slog.Default().With("component", "catalog"),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Decode reads a catalog body. It fails when the body is not a JSON object
// or its paints field is not an array. Elements of paints that are not
// objects decode as empty records, which the registry skips without
// affecting their siblings.
func Decode(r io.Reader) (*Catalog, error) {
	var raw struct {
		Paints []any `json:"paints"`
	}
	if err := json.NewDecoder(io.LimitReader(r, MaxBodyBytes)).Decode(&raw); err != nil {
		return nil, errors.New("P101").WithDetail(err.Error())
	}

	c := &Catalog{Paints: make([]paint.Record, len(raw.Paints))}
	for i, v := range raw.Paints {
		c.Paints[i] = paint.ToRecord(v)
	}
	return c, nil
}

// Load fetches and decodes the whole catalog, then merges it. On a fetch
// or decode failure nothing is merged. Load does not retry.
func (l *Loader) Load(ctx context.Context) (result registry.MergeResult, err error) {
	ctx, span := l.tracer.Start(ctx, "catalog.load")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.Int("paints.parsed", result.Parsed),
				attribute.Int("paints.skipped", result.Skipped),
				attribute.Int("users.assigned", result.Assigned),
			)
			span.SetStatus(codes.Ok, "")
		}
		span.End()
		if l.recorder != nil {
			l.recorder.RecordCatalogLoad(err)
		}
	}()

	body, err := l.source.Fetch(ctx)
	if err != nil {
		return result, errors.New("P100").Wrap(err)
	}
	defer body.Close()

	c, err := Decode(body)
	if err != nil {
		return result, err
	}
	span.SetAttributes(attribute.Int("paints.received", len(c.Paints)))

	return l.merger.BulkMerge(c.Paints), nil
}

// Run loads the catalog immediately and then every interval until ctx is
// done. Failed loads are logged and retried at the next tick. An interval
// of zero or less loads once.
func (l *Loader) Run(ctx context.Context, interval time.Duration) {
	l.loadAndLog(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.loadAndLog(ctx)
		}
	}
}

func (l *Loader) loadAndLog(ctx context.Context) {
	start := time.Now()
	result, err := l.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		l.logger.Warn("catalog load failed", "error", err)
		return
	}
	l.logger.Info("catalog loaded",
		"parsed", result.Parsed,
		"skipped", result.Skipped,
		"duration", time.Since(start))
}

// String describes the loader's source for logs.
func (l *Loader) String() string {
	switch s := l.source.(type) {
	case *HTTPSource:
		u, _ := s.RequestURL()
		return "http " + u
	case FileSource:
		return "file " + s.Path
	case *S3Source:
		return fmt.Sprintf("s3 %s/%s", s.Bucket, s.Key)
	}
	return fmt.Sprintf("%T", l.source)
}
