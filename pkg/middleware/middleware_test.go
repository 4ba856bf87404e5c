package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func newRouter(mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(mw...)
	r.Get("/v1/paints/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return r
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func metricHistogramCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	var total uint64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetHistogram().GetSampleCount()
		}
	}
	return total
}

func TestPrometheus_LabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newRouter(Prometheus(WithRegistry(reg)))

	serve(h, "/v1/paints/p1")
	serve(h, "/v1/paints/p2")
	serve(h, "/v1/paints/missing")
	serve(h, "/boom")

	expected := `
# HELP paintd_http_requests_total Total number of HTTP requests by route, method and status code
# TYPE paintd_http_requests_total counter
paintd_http_requests_total{code="200",method="GET",route="/v1/paints/{id}"} 2
paintd_http_requests_total{code="404",method="GET",route="/v1/paints/{id}"} 1
paintd_http_requests_total{code="500",method="GET",route="/boom"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "paintd_http_requests_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
	if got := metricHistogramCount(t, reg, "paintd_http_request_duration_seconds"); got != 4 {
		t.Errorf("duration samples = %d, want 4", got)
	}
}

func TestPrometheus_UnmatchedAndInFlight(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newRouter(Prometheus(WithRegistry(reg), WithNamespace("test"), WithConstLabels(prometheus.Labels{"instance": "a"}), WithBuckets(nil)))

	serve(h, "/nowhere")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	var found *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "test_http_requests_total" {
			found = mf
		}
		if mf.GetName() == "test_http_requests_in_flight" {
			if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 0 {
				t.Errorf("in flight = %v after request, want 0", v)
			}
		}
	}
	if found == nil {
		t.Fatal("test_http_requests_total not registered")
	}
	labels := map[string]string{}
	for _, lp := range found.GetMetric()[0].GetLabel() {
		labels[lp.GetName()] = lp.GetValue()
	}
	if labels["route"] != "unmatched" || labels["code"] != "404" || labels["instance"] != "a" {
		t.Errorf("labels = %v", labels)
	}
}

type recordedSpan struct {
	noop.Span
	mu     sync.Mutex
	name   string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	ended  bool
}

func (s *recordedSpan) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
}

func (s *recordedSpan) End(...trace.SpanEndOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
}

type recordingTracer struct {
	noop.Tracer
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{name: name, attrs: map[attribute.Key]attribute.Value{}}
	for _, a := range cfg.Attributes() {
		s.attrs[a.Key] = a.Value
	}
	t.spans = append(t.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func (p recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return p.tracer
}

func TestOpenTelemetry_NamesSpanByRoute(t *testing.T) {
	tracer := &recordingTracer{}
	h := newRouter(OpenTelemetry(WithTracerProvider(recordingProvider{tracer: tracer})))

	serve(h, "/v1/paints/p1")
	serve(h, "/boom")

	if len(tracer.spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(tracer.spans))
	}

	ok := tracer.spans[0]
	if ok.name != "GET /v1/paints/{id}" {
		t.Errorf("span name = %q", ok.name)
	}
	if ok.attrs["url.path"].AsString() != "/v1/paints/p1" {
		t.Errorf("url.path = %v", ok.attrs["url.path"])
	}
	if ok.attrs["http.response.status_code"].AsInt64() != 200 {
		t.Errorf("status attr = %v", ok.attrs["http.response.status_code"])
	}
	if ok.status == codes.Error || !ok.ended {
		t.Errorf("status = %v, ended = %v", ok.status, ok.ended)
	}

	if tracer.spans[1].status != codes.Error {
		t.Errorf("5xx span status = %v, want Error", tracer.spans[1].status)
	}
}

func TestOpenTelemetry_Filter(t *testing.T) {
	tracer := &recordingTracer{}
	h := newRouter(OpenTelemetry(
		WithTracerProvider(recordingProvider{tracer: tracer}),
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/boom" }),
	))

	serve(h, "/boom")
	serve(h, "/v1/paints/p1")

	if len(tracer.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(tracer.spans))
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := newRouter(AccessLog(logger))

	serve(h, "/v1/paints/p1")
	serve(h, "/boom")

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG msg=request method=GET path=/v1/paints/p1 route=/v1/paints/{id} status=200 bytes=2",
		"level=WARN msg=request method=GET path=/boom route=/boom status=500",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q\n%s", want, out)
		}
	}
}
