package observability

import (
	"strings"

	"github.com/smallbiznis/meritscore/internal/config"
)

// Config is the telemetry view of the application config shared by the
// logger, tracer and meter providers.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	ExportEnabled  bool
	ExportEndpoint string
	ExportProtocol string
	SamplingRatio  float64
}

func FromAppConfig(cfg config.Config) Config {
	name := strings.TrimSpace(cfg.AppName)
	if name == "" {
		name = "meritscore"
	}
	ratio := cfg.Telemetry.SamplingRatio
	if ratio < 0 || ratio > 1 {
		ratio = 0.1
	}
	protocol := cfg.Telemetry.OTLPProtocol
	if protocol != "http" {
		protocol = "grpc"
	}
	return Config{
		ServiceName:    name,
		Environment:    strings.TrimSpace(cfg.Environment),
		Version:        strings.TrimSpace(cfg.AppVersion),
		LogLevel:       cfg.Telemetry.LogLevel,
		LogFormat:      cfg.Telemetry.LogFormat,
		ExportEnabled:  cfg.Telemetry.OTLPEnabled && cfg.Telemetry.OTLPEndpoint != "",
		ExportEndpoint: cfg.Telemetry.OTLPEndpoint,
		ExportProtocol: protocol,
		SamplingRatio:  ratio,
	}
}

// Debug is true for debug logging or any non-production environment.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}
