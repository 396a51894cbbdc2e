package config

import (
	"time"

	"github.com/spf13/viper"
)

// Tracing OpenTelemetry exporter config struct
type Tracing struct {
	Enabled bool
	// Endpoint is the OTLP/gRPC collector address, host:port.
	Endpoint           string
	Insecure           bool
	SamplingRate       float64
	BatchTimeout       time.Duration
	ExportTimeout      time.Duration
	MaxExportBatchSize int
}

func getTracingConfig(v *viper.Viper) *Tracing {
	return &Tracing{
		Enabled:            getBoolOrDefault(v, "tracing.enabled", false),
		Endpoint:           getStringOrDefault(v, "tracing.endpoint", "localhost:4317"),
		Insecure:           getBoolOrDefault(v, "tracing.insecure", true),
		SamplingRate:       getFloat64OrDefault(v, "tracing.sampling_rate", 1.0),
		BatchTimeout:       getDurationOrDefault(v, "tracing.batch_timeout", 5*time.Second),
		ExportTimeout:      getDurationOrDefault(v, "tracing.export_timeout", 30*time.Second),
		MaxExportBatchSize: getIntOrDefault(v, "tracing.max_export_batch_size", 512),
	}
}
