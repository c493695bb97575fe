// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewProviderDisabledInstallsNoop(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false, ServiceName: "test"})
	require.NoError(t, err)
	assert.Nil(t, provider.tp)

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording())
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProviderRejectsUnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ServiceName: "test", ExporterType: "zipkin"})
	require.Error(t, err)
	assert.Equal(t, "unsupported exporter type: zipkin (supported: grpc, http)", err.Error())
}

func TestStartAttributesSkipsEmpty(t *testing.T) {
	attrs := StartAttributes("abc123", "")
	require.Len(t, attrs, 1)
	assert.Equal(t, VideoIDKey, string(attrs[0].Key))
	assert.Equal(t, "abc123", attrs[0].Value.AsString())
}

func TestSelectionAttributes(t *testing.T) {
	attrs := SelectionAttributes("avc1.64001f", 1080, 30, "opus", 128000)
	require.Len(t, attrs, 5)
	assert.Equal(t, int64(1080), attrs[1].Value.AsInt64())
	assert.Equal(t, int64(128000), attrs[4].Value.AsInt64())
}
