// Package middleware provides net/http middleware for the paintd query API.
//
// This package includes:
//   - Prometheus request metrics, labelled by chi route pattern
//   - OpenTelemetry server spans
//   - Structured access logging with slog
//
// The middlewares are plain func(http.Handler) http.Handler values and can
// be mounted on any chi router:
//
//	r := chi.NewRouter()
//	r.Use(
//	    middleware.OpenTelemetry(),
//	    middleware.Prometheus(middleware.WithRegistry(promReg)),
//	    middleware.AccessLog(logger),
//	)
//
// Route patterns (for example /v1/users/{username}/paint) are used for
// labels and span names instead of raw paths, which keeps metric
// cardinality bounded.
package middleware
