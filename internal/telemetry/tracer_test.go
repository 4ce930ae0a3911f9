// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false, ExporterType: "grpc"})
	require.NoError(t, err)
	assert.Nil(t, provider.tp)

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording())
	span.End()
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProviderInvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ExporterType: "invalid"})
	require.Error(t, err)
	assert.Equal(t, "unsupported exporter type: invalid (supported: grpc, http)", err.Error())
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.5).Description(), "TraceIDRatioBased")
}

func TestSpansReachExporter(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	provider, err := NewProviderWithExporter(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "apigate-test",
		SamplingRate: 1,
	}, exp)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		otel.SetTracerProvider(noop.NewTracerProvider())
	})

	_, span := Tracer(TracerName).Start(context.Background(), "dispatch ProfileAPI.GetProfile")
	span.SetAttributes(DispatchAttributes("ProfileAPI", "GetProfile")...)
	span.SetAttributes(SessionAttributes("tenant", 3)...)
	RecordError(span, errors.New("tenant 3 is paused"), "tenant_paused")
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, codes.Error, got.Status.Code)
	assert.Contains(t, got.Attributes, attribute.String(APIKey, "ProfileAPI"))
	assert.Contains(t, got.Attributes, attribute.Int64(TenantIDKey, 3))
	assert.Contains(t, got.Attributes, attribute.String(ErrorKindKey, "tenant_paused"))
}

func TestSessionAttributesOmitNegativeTenant(t *testing.T) {
	attrs := SessionAttributes("platform", -1)
	require.Len(t, attrs, 1)
	assert.Empty(t, SessionAttributes("", -1))
}
