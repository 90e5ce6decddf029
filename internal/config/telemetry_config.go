package config

type TelemetryConfig interface {
	GetOTLPEndpoint() string
	GetServiceName() string
}

type Telemetry struct{}

var _ TelemetryConfig = Telemetry{}

// GetOTLPEndpoint returns the OTLP/HTTP collector endpoint, tracing export is disabled when empty
func (Telemetry) GetOTLPEndpoint() string {
	return GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

func (Telemetry) GetServiceName() string {
	return GetEnv("OTEL_SERVICE_NAME", "aicp-web")
}
