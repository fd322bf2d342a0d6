package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "panefit"

// Metrics holds all OTEL metric instruments for panefit.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// Analysis counters
	PanesAnalyzed     metric.Int64Counter
	LayoutsCalculated metric.Int64Counter
	MovesPlanned      metric.Int64Counter

	// LLM counters (partitioned by provider + model via attributes)
	LLMRequests  metric.Int64Counter
	InputTokens  metric.Int64Counter
	OutputTokens metric.Int64Counter

	// Score cache counters
	ScoreCacheHits   metric.Int64Counter
	ScoreCacheMisses metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.PanesAnalyzed, err = meter.Int64Counter("panes.analyzed",
		metric.WithDescription("Total panes scored by the local analyzer"),
		metric.WithUnit("{pane}"))
	if err != nil {
		return nil, err
	}

	m.LayoutsCalculated, err = meter.Int64Counter("layouts.calculated",
		metric.WithDescription("Total layouts computed, partitioned by strategy"))
	if err != nil {
		return nil, err
	}

	m.MovesPlanned, err = meter.Int64Counter("moves.planned",
		metric.WithDescription("Total cross-window pane moves planned"),
		metric.WithUnit("{move}"))
	if err != nil {
		return nil, err
	}

	m.LLMRequests, err = meter.Int64Counter("llm.requests",
		metric.WithDescription("Total external scoring requests partitioned by provider + model"))
	if err != nil {
		return nil, err
	}

	m.InputTokens, err = meter.Int64Counter("llm.tokens.input",
		metric.WithDescription("Total LLM input tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.OutputTokens, err = meter.Int64Counter("llm.tokens.output",
		metric.WithDescription("Total LLM output tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.ScoreCacheHits, err = meter.Int64Counter("score_cache.hits",
		metric.WithDescription("Number of score cache hits (pane content unchanged, reused previous score)"))
	if err != nil {
		return nil, err
	}

	m.ScoreCacheMisses, err = meter.Int64Counter("score_cache.misses",
		metric.WithDescription("Number of score cache misses (content changed, TTL expired, or first scoring)"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordPanesAnalyzed records a batch of locally scored panes.
func (m *Metrics) RecordPanesAnalyzed(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.PanesAnalyzed.Add(ctx, int64(count))
}

// RecordLayout records one computed layout for the given strategy.
func (m *Metrics) RecordLayout(ctx context.Context, strategy string) {
	if m == nil {
		return
	}
	m.LayoutsCalculated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("layout.strategy", strategy),
	))
}

// RecordMovesPlanned records planned cross-window moves.
func (m *Metrics) RecordMovesPlanned(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.MovesPlanned.Add(ctx, int64(count))
}

// RecordLLMRequest records one external scoring call and its token usage.
func (m *Metrics) RecordLLMRequest(ctx context.Context, provider, model string, input, output int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model),
	)
	m.LLMRequests.Add(ctx, 1, attrs)
	if input > 0 {
		m.InputTokens.Add(ctx, input, attrs)
	}
	if output > 0 {
		m.OutputTokens.Add(ctx, output, attrs)
	}
}

// RecordCacheHit records a score cache hit.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	if m == nil {
		return
	}
	m.ScoreCacheHits.Add(ctx, 1)
}

// RecordCacheMiss records a score cache miss.
func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	if m == nil {
		return
	}
	m.ScoreCacheMisses.Add(ctx, 1)
}
