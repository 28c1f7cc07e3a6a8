package observability

import (
	"time"

	"atscore/internal/config"
)

const defaultCollectionInterval = 15 * time.Second

// ConfigFrom resolves the observability settings of cfg. The tracing sample
// rate overrides the global one when set; the app version fills in a
// missing service version.
func ConfigFrom(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{ServiceName: "atscore", ServiceVersion: version}
	}
	obs := cfg.Observability

	oc := ObservabilityConfig{
		ServiceName:     obs.ServiceName,
		ServiceVersion:  obs.ServiceVersion,
		ServiceInstance: obs.ServiceInstance,
		Enabled:         obs.Enabled,
		Tracing:         obs.Tracing.Enabled,
		Metrics:         obs.Metrics.Enabled,
		ConsoleOutput:   obs.ConsoleOutput,
		SampleRate:      obs.SampleRate,
		Interval:        obs.Metrics.CollectionInterval,
		OTLP:            obs.OTLP,
		Prometheus:      GetPrometheusConfig(cfg),
		Groups:          obs.CustomMetrics,
	}
	if oc.ServiceName == "" {
		oc.ServiceName = "atscore"
	}
	if oc.ServiceVersion == "" {
		oc.ServiceVersion = version
	}
	if oc.ServiceInstance == "" {
		oc.ServiceInstance = oc.ServiceName + "-1"
	}
	if obs.Tracing.SampleRate > 0 {
		oc.SampleRate = obs.Tracing.SampleRate
	}
	if oc.Interval <= 0 {
		oc.Interval = defaultCollectionInterval
	}
	return oc
}
