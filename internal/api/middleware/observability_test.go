package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/contentiq/contentiq/internal/infrastructure/observability"
)

func TestObservabilityMiddleware_LabelsMetricsWithRoutePattern(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	previous := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(previous) })

	metrics, err := observability.InitMetrics()
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := ObservabilityMiddleware(metrics, mux)(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/things/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var collected metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &collected))

	route := requestCountRouteAttribute(t, collected)
	assert.Equal(t, "GET /api/things/{id}", route)
}

// requestCountRouteAttribute digs the http.route attribute out of the
// request counter's single data point.
func requestCountRouteAttribute(t *testing.T, rm metricdata.ResourceMetrics) string {
	t.Helper()
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "http.server.request.count" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "request counter has unexpected data type %T", m.Data)
			require.Len(t, sum.DataPoints, 1)
			route, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("http.route"))
			require.True(t, ok, "request counter missing http.route attribute")
			return route.AsString()
		}
	}
	t.Fatal("http.server.request.count was not collected")
	return ""
}
