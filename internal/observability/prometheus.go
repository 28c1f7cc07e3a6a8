package observability

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"atscore/internal/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

const defaultMetricsPath = "/metrics"

// PrometheusConfig is the scrape listener setup
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// SetupPrometheusExporter returns a reader feeding the default registry and
// a mux serving that registry at the configured path.
func SetupPrometheusExporter(pc PrometheusConfig) (metric.Reader, *http.ServeMux, error) {
	if !pc.Enabled {
		return nil, nil, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	path := pc.Endpoint
	if path == "" {
		path = defaultMetricsPath
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	return exporter, mux, nil
}

// StartPrometheusServer listens on port in the background. The returned
// server is nil when mux is nil.
func StartPrometheusServer(mux *http.ServeMux, port string) *http.Server {
	if mux == nil {
		return nil
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       time.Minute,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics listener on %s stopped: %v", srv.Addr, err)
		}
	}()
	return srv
}

// GetPrometheusConfig reads the Prometheus block of cfg, filling defaults
// for an absent path or port.
func GetPrometheusConfig(cfg *config.Config) PrometheusConfig {
	pc := PrometheusConfig{Endpoint: defaultMetricsPath, Port: "9090"}
	if cfg == nil {
		return pc
	}
	p := cfg.Observability.Prometheus
	pc.Enabled = p.Enabled
	if p.Endpoint != "" {
		pc.Endpoint = p.Endpoint
	}
	if p.Port != "" {
		pc.Port = p.Port
	}
	return pc
}
