package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
)

func TestNewProvider_DisabledIsNoop(t *testing.T) {
	for _, cfg := range []Config{
		{Enabled: false, Endpoint: "http://localhost:4318"},
		{Enabled: true},
	} {
		p, shutdown, err := NewProvider(context.Background(), cfg, "ferry", "dev")
		require.NoError(t, err)
		require.NotNil(t, shutdown)
		assert.Nil(t, p.TracerProvider)
		assert.Nil(t, p.MeterProvider)
		assert.NoError(t, shutdown(context.Background()))
	}
}

func TestNewProvider_RejectsEndpointWithoutHost(t *testing.T) {
	_, _, err := NewProvider(context.Background(), Config{Enabled: true, Endpoint: "localhost"}, "ferry", "dev")
	assert.ErrorContains(t, err, "no host")
}

func TestParseCollector(t *testing.T) {
	col, err := parseCollector(Config{
		Endpoint:  "http://collector:4318/otlp/",
		AuthToken: "dXNlcjpwYXNz",
		Headers:   map[string]string{"X-Scope-OrgID": "ferry"},
	})
	require.NoError(t, err)

	assert.Equal(t, "collector:4318", col.host)
	assert.Equal(t, "/otlp/v1/traces", col.urlPath("traces"))
	assert.True(t, col.insecure)
	assert.Equal(t, "Basic dXNlcjpwYXNz", col.headers["Authorization"])
	assert.Equal(t, "ferry", col.headers["X-Scope-OrgID"])

	col, err = parseCollector(Config{Endpoint: "https://otlp.example.org"})
	require.NoError(t, err)
	assert.False(t, col.insecure)
	assert.Empty(t, col.urlPath("metrics"))
	assert.Empty(t, col.headers)

	_, err = parseCollector(Config{Endpoint: "://bad"})
	assert.Error(t, err)
}

func TestSampler(t *testing.T) {
	assert.Equal(t, trace.NeverSample().Description(), sampler(0).Description())
	assert.Equal(t, trace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, trace.AlwaysSample().Description(), sampler(3).Description())
	assert.Equal(t, trace.TraceIDRatioBased(0.25).Description(), sampler(0.25).Description())
}
