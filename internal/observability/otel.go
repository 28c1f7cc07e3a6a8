package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"atscore/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig is everything the manager needs, resolved from the
// application config by ConfigFrom.
type ObservabilityConfig struct {
	ServiceName     string
	ServiceVersion  string
	ServiceInstance string
	Enabled         bool
	Tracing         bool
	Metrics         bool
	ConsoleOutput   bool
	SampleRate      float64
	Interval        time.Duration
	OTLP            config.OTLPConfig
	Prometheus      PrometheusConfig
	Groups          config.CustomMetricsConfig
}

// ObservabilityManager owns the tracer and meter providers and the
// application metrics built on them.
type ObservabilityManager struct {
	config           ObservabilityConfig
	resource         *resource.Resource
	tracerProvider   *sdktrace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	prometheusServer *http.Server
	shutdownFuncs    []func(context.Context) error
}

// NewObservabilityManager sets up tracing and metrics as configured. A
// disabled config yields a manager whose tracer is a no-op and whose
// metrics are nil.
func NewObservabilityManager(cfg ObservabilityConfig) (*ObservabilityManager, error) {
	om := &ObservabilityManager{config: cfg}
	if !cfg.Enabled {
		return om, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("service.instance.id", cfg.ServiceInstance),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	om.resource = res

	if cfg.Tracing {
		if err := om.initTracing(); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}
	if cfg.Metrics {
		if err := om.initMetrics(); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}
	return om, nil
}

func (om *ObservabilityManager) initTracing() error {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(om.resource),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(om.config.SampleRate))),
	}

	// Without an exporter spans are still sampled and propagated, just not shipped.
	switch {
	case om.config.ConsoleOutput:
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create console trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case om.config.OTLP.Enabled:
		exporter, err := otlptracehttp.New(context.Background(), otlpTraceOptions(om.config.OTLP)...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.metricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(om.resource)}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	om.metrics, err = NewMetrics(mp.Meter(om.config.ServiceName), om.config.Groups)
	return err
}

// metricReaders builds one reader per configured sink. With no sink a
// manual reader keeps the instruments valid.
func (om *ObservabilityManager) metricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader
	periodic := func(exp sdkmetric.Exporter) sdkmetric.Reader {
		return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(om.config.Interval))
	}

	if om.config.ConsoleOutput {
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, periodic(exp))
	}

	if om.config.OTLP.Enabled {
		exp, err := otlpmetrichttp.New(context.Background(), otlpMetricOptions(om.config.OTLP)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		readers = append(readers, periodic(exp))
	}

	if om.config.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, err
		}
		readers = append(readers, reader)
		om.prometheusServer = StartPrometheusServer(mux, om.config.Prometheus.Port)
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

func otlpTraceOptions(c config.OTLPConfig) []otlptracehttp.Option {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(c.Endpoint)}
	if c.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(c.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(c.Headers))
	}
	return opts
}

func otlpMetricOptions(c config.OTLPConfig) []otlpmetrichttp.Option {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(c.Endpoint)}
	if c.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(c.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(c.Headers))
	}
	return opts
}

// GetMetrics returns the application metrics, or nil when metrics are off.
// Every Metrics method accepts a nil receiver.
func (om *ObservabilityManager) GetMetrics() *Metrics {
	return om.metrics
}

// HTTPMiddleware wraps handlers with otelhttp when tracing is on
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if om.tracerProvider == nil {
		return func(h http.Handler) http.Handler { return h }
	}

	opts := []otelhttp.Option{otelhttp.WithTracerProvider(om.tracerProvider)}
	if om.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(om.meterProvider))
	}
	return otelhttp.NewMiddleware(om.config.ServiceName, opts...)
}

// Tracer returns a named tracer, a no-op one when tracing is off
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown stops the Prometheus listener and flushes every provider,
// returning all errors encountered.
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	var errs []error
	if om.prometheusServer != nil {
		errs = append(errs, om.prometheusServer.Shutdown(ctx))
	}
	for _, shutdown := range om.shutdownFuncs {
		errs = append(errs, shutdown(ctx))
	}
	return errors.Join(errs...)
}
