package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mBrond/chat-medicamentos/internal/infrastructure/observability"
)

// UnmatchedRoute labels requests no route pattern matched
const UnmatchedRoute = "unmatched"

// ObservabilityMiddleware adds OpenTelemetry tracing and metrics to HTTP
// requests. It must wrap the ServeMux directly: the route label is the
// pattern the mux matched, read after the handler returns.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), r.Method+" "+UnmatchedRoute)
			defer span.End()

			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.request_id", observability.RequestIDFromContext(ctx)),
			)

			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			req := r.WithContext(ctx)
			start := time.Now()
			next.ServeHTTP(rw, req)

			route := req.Pattern
			if route == "" {
				route = UnmatchedRoute
			}
			// Method-qualified patterns already read "GET /path"
			if strings.Contains(route, " ") {
				span.SetName(route)
			} else {
				span.SetName(r.Method + " " + route)
			}

			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rw.statusCode, time.Since(start))
			observability.SetSpanAttributes(span,
				attribute.String("http.route", route),
				attribute.Int("http.status_code", rw.statusCode),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
