// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracing_RouteSpansSkipHealthEndpoints(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	r := chi.NewRouter()
	r.Use(Tracing("tizenplay", otelhttp.WithTracerProvider(tp), otelhttp.WithMeterProvider(mp)))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Put("/api/v1/streams/{videoID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/v1/streams/abc123", nil))

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "PUT /api/v1/streams/{videoID}", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("http.route", "/api/v1/streams/{videoID}"))
	assert.Contains(t, ended[0].Attributes(), attribute.Int("http.status_code", http.StatusNoContent))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var scopes []string
	for _, sm := range rm.ScopeMetrics {
		if len(sm.Metrics) > 0 {
			scopes = append(scopes, sm.Scope.Name)
		}
	}
	assert.Contains(t, scopes, "go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp")
}

func TestMiddleware_KeepsFlusher(t *testing.T) {
	var flushable bool
	handler := Metrics(AccessLog(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, flushable = w.(http.Flusher)
		_, _ = w.Write([]byte("ok"))
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/commands", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, flushable)
}
