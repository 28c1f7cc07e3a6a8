package observability

import (
	"context"
	"fmt"
	"time"

	"atscore/internal/config"
	"atscore/internal/errors"
	"atscore/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application instruments. A nil *Metrics, or one whose
// instruments were never created, records nothing.
type Metrics struct {
	toggles config.CustomMetricsConfig

	// Analysis
	AnalysisDuration metric.Float64Histogram
	Analyses         metric.Int64Counter
	Degradations     metric.Int64Counter

	// Embedding provider
	EmbeddingRequests metric.Int64Counter
	EmbeddingErrors   metric.Int64Counter

	// Infrastructure
	RateLimitHits    metric.Int64Counter
	VocabularyReload metric.Int64Counter
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, toggles config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{toggles: toggles}
	var err error

	if m.AnalysisDuration, err = meter.Float64Histogram(
		"atscore_analysis_duration_seconds",
		metric.WithDescription("Time spent scoring one résumé against one job description"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create analysis duration metric: %w", err)
	}

	if m.Analyses, err = meter.Int64Counter(
		"atscore_analyses_total",
		metric.WithDescription("Total number of scoring operations"),
	); err != nil {
		return nil, fmt.Errorf("failed to create analyses metric: %w", err)
	}

	if m.Degradations, err = meter.Int64Counter(
		"atscore_score_degradations_total",
		metric.WithDescription("Scores that fell back to zero because a scorer failed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create degradation metric: %w", err)
	}

	if m.EmbeddingRequests, err = meter.Int64Counter(
		"atscore_embedding_requests_total",
		metric.WithDescription("Total number of embedding requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create embedding request metric: %w", err)
	}

	if m.EmbeddingErrors, err = meter.Int64Counter(
		"atscore_embedding_errors_total",
		metric.WithDescription("Total number of failed embedding requests"),
	); err != nil {
		return nil, fmt.Errorf("failed to create embedding error metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"atscore_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	if m.VocabularyReload, err = meter.Int64Counter(
		"atscore_vocabulary_reloads_total",
		metric.WithDescription("Skill vocabulary reload attempts"),
	); err != nil {
		return nil, fmt.Errorf("failed to create vocabulary reload metric: %w", err)
	}

	return m, nil
}

// TrackAnalysis times fn and counts it under operation.
func (m *Metrics) TrackAnalysis(ctx context.Context, operation string, fn func(context.Context) error) error {
	if m == nil || m.Analyses == nil || !m.toggles.Analysis {
		return fn(ctx)
	}

	start := time.Now()
	err := fn(ctx)
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	)
	m.AnalysisDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	m.Analyses.Add(ctx, 1, attrs)
	return err
}

// ObserveDegradation counts a scorer that returned zero.
func (m *Metrics) ObserveDegradation(ctx context.Context, d types.Degradation) {
	if m == nil || m.Degradations == nil || !m.toggles.Analysis {
		return
	}
	m.Degradations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", d.Component),
		attribute.String("error_code", d.Code),
	))
}

// ObserveEmbedding counts one embedding call against provider.
func (m *Metrics) ObserveEmbedding(ctx context.Context, provider string, err error) {
	if m == nil || m.EmbeddingRequests == nil || !m.toggles.Embedding {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.Bool("success", err == nil),
	}
	m.EmbeddingRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		attrs = append(attrs, attribute.String("error_code", errorCode(err)))
		m.EmbeddingErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordRateLimitHit counts a rejected request.
func (m *Metrics) RecordRateLimitHit(ctx context.Context, endpoint string) {
	if m == nil || m.RateLimitHits == nil || !m.toggles.Infrastructure {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// RecordVocabularyReload counts a vocabulary reload attempt.
func (m *Metrics) RecordVocabularyReload(ctx context.Context, success bool) {
	if m == nil || m.VocabularyReload == nil || !m.toggles.Infrastructure {
		return
	}
	m.VocabularyReload.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

func errorCode(err error) string {
	if code := errors.CodeOf(err); code != "" {
		return code
	}
	return "UNKNOWN"
}
