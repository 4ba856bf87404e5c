package api

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chatpaint/paintd/pkg/paint"
	"github.com/chatpaint/paintd/pkg/registry"
)

// MaxImageScale bounds the scale query of the image route.
const MaxImageScale = 4

// Store is the read side of the registry. *registry.Registry satisfies it.
type Store interface {
	Lookup(username string) (paint.Paint, bool)
	Paint(id string) (paint.Paint, bool)
	Stats() registry.Stats
}

// Option configures the handler.
type Option func(*handler)

// WithMetricsHandler serves h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(a *handler) {
		a.metrics = h
	}
}

// WithMiddleware adds middleware to every route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *handler) {
		a.middleware = append(a.middleware, mw...)
	}
}

// WithImages resolves scaled variants of paint images. Without it the image
// route only serves scale 1.
func WithImages(r paint.ImageResolver) Option {
	return func(a *handler) {
		a.images = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *handler) {
		if l != nil {
			a.logger = l
		}
	}
}

type handler struct {
	store      Store
	images     paint.ImageResolver
	metrics    http.Handler
	middleware []func(http.Handler) http.Handler
	logger     *slog.Logger
}

// NewHandler returns the HTTP API for store:
//
//	GET /v1/users/{username}/paint
//	GET /v1/paints/{id}
//	GET /v1/paints/{id}/image?scale=N
//	GET /v1/stats
//	GET /healthz
//	GET /metrics    (when WithMetricsHandler is given)
func NewHandler(store Store, opts ...Option) http.Handler {
	a := &handler{
		store:  store,
		logger: slog.Default().With("component", "api"),
	}
	for _, opt := range opts {
		opt(a)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer)
	r.Use(a.middleware...)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/users/{username}/paint", a.userPaint)
		r.Get("/paints/{id}", a.paintByID)
		r.Get("/paints/{id}/image", a.paintImage)
		r.Get("/stats", a.stats)
	})

	return r
}

func (a *handler) userPaint(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	p, ok := a.store.Lookup(username)
	if !ok {
		a.writeError(w, http.StatusNotFound, "no paint assigned")
		return
	}
	a.writeJSON(w, http.StatusOK, NewPaintView(p))
}

func (a *handler) paintByID(w http.ResponseWriter, r *http.Request) {
	p, ok := a.store.Paint(chi.URLParam(r, "id"))
	if !ok {
		a.writeError(w, http.StatusNotFound, "unknown paint")
		return
	}
	a.writeJSON(w, http.StatusOK, NewPaintView(p))
}

// contextLoader is implemented by image handles that can stop loading when
// the request goes away.
type contextLoader interface {
	Load(ctx context.Context) (image.Image, error)
}

func (a *handler) paintImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := a.store.Paint(id)
	if !ok {
		a.writeError(w, http.StatusNotFound, "unknown paint")
		return
	}
	u, ok := p.(*paint.URLImage)
	if !ok || u.Image == nil {
		a.writeError(w, http.StatusNotFound, "paint has no image")
		return
	}

	scale := 1.0
	if q := r.URL.Query().Get("scale"); q != "" {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil || v <= 0 || v > MaxImageScale {
			a.writeError(w, http.StatusBadRequest, "invalid scale")
			return
		}
		scale = v
	}

	h := u.Image
	if scale != 1 {
		if a.images == nil {
			a.writeError(w, http.StatusBadRequest, "scaling not available")
			return
		}
		if h = a.images.Resolve(u.Image.URL(), scale); h == nil {
			a.writeError(w, http.StatusBadRequest, "invalid scale")
			return
		}
	}

	var (
		img image.Image
		err error
	)
	if l, ok := h.(contextLoader); ok {
		img, err = l.Load(r.Context())
	} else {
		img, err = h.Image()
	}
	if err != nil || img == nil {
		a.logger.Warn("paint image unavailable", "paint_id", id, "url", h.URL(), "error", err)
		a.writeError(w, http.StatusBadGateway, "image unavailable")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := png.Encode(w, img); err != nil {
		a.logger.Warn("write image failed", "paint_id", id, "error", err)
	}
}

func (a *handler) stats(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.store.Stats())
}

type errorBody struct {
	Error string `json:"error"`
}

func (a *handler) writeError(w http.ResponseWriter, status int, msg string) {
	a.writeJSON(w, status, errorBody{Error: msg})
}

func (a *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("write response failed", "error", err)
	}
}
