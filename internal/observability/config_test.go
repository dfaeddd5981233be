package observability

import (
	"testing"

	"github.com/smallbiznis/meritscore/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(config.Config{
		AppVersion:  "1.2.0",
		Environment: "production",
		Telemetry: config.TelemetryConfig{
			LogLevel:      "info",
			OTLPEnabled:   true,
			OTLPEndpoint:  "collector:4318",
			OTLPProtocol:  "http",
			SamplingRatio: 3,
		},
	})
	assert.Equal(t, "meritscore", cfg.ServiceName)
	assert.True(t, cfg.ExportEnabled)
	assert.Equal(t, "http", cfg.ExportProtocol)
	assert.Equal(t, 0.1, cfg.SamplingRatio)
	assert.False(t, cfg.Debug())

	cfg = FromAppConfig(config.Config{
		Environment: "test",
		Telemetry:   config.TelemetryConfig{OTLPEnabled: true, OTLPProtocol: "udp"},
	})
	assert.False(t, cfg.ExportEnabled)
	assert.Equal(t, "grpc", cfg.ExportProtocol)
	assert.True(t, cfg.Debug())
}

func TestSplitConfigSharesExportSettings(t *testing.T) {
	out := splitConfig(Config{
		ServiceName: "meritscore", Environment: "staging", Version: "1.0.0",
		ExportEnabled: true, ExportEndpoint: "collector:4317", ExportProtocol: "grpc", SamplingRatio: 0.5,
	})
	assert.Equal(t, out.Tracing.ExporterEndpoint, out.Metrics.ExporterEndpoint)
	assert.True(t, out.Tracing.Enabled)
	assert.True(t, out.Metrics.Enabled)
	assert.Equal(t, 0.5, out.Tracing.SamplingRatio)
	assert.Equal(t, "staging", out.Logger.Environment)
	assert.False(t, out.Logger.IncludeStackOnError)
}
