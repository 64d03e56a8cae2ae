package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/contentiq/contentiq/internal/infrastructure/observability"
)

// RouteResolver maps a request to its registered route pattern. A
// *http.ServeMux satisfies it. The mux only sets Pattern on its own copy
// of the request, so an outer middleware has to resolve the pattern
// itself rather than read it back after ServeHTTP.
type RouteResolver interface {
	Handler(r *http.Request) (http.Handler, string)
}

// statusRecorder captures the response status code for span and metric attributes.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// ObservabilityMiddleware creates spans and records request metrics for each
// HTTP request. The route pattern (not the raw path) is used as the span and
// metric label to keep cardinality bounded.
func ObservabilityMiddleware(metrics *observability.Metrics, routes RouteResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			pattern := ""
			if routes != nil {
				_, pattern = routes.Handler(r)
			}
			if pattern == "" {
				pattern = r.URL.Path
			}

			ctx, span := observability.StartSpan(r.Context(), r.Method+" "+pattern,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
					attribute.String("http.route", pattern),
				),
			)
			defer span.End()

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r.WithContext(ctx))

			span.SetAttributes(attribute.Int("http.status_code", recorder.status))
			if recorder.status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(recorder.status))
			}

			observability.RecordRequestMetric(ctx, metrics, r.Method, pattern, recorder.status, time.Since(start))
		})
	}
}
