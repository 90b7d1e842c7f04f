// Package telemetry wraps goa.design/clue/log and OpenTelemetry behind small
// interfaces, the way runtime/agent/telemetry/clue.go does in the teacher
// tree, so the coordination core depends on an interface rather than a
// concrete logging/metrics library.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// KV is a single structured logging field, mirroring
// runtime/agent/hooks' use of goa.design/clue/log.KV.
type KV struct {
	K string
	V any
}

// Logger is the structured logging capability the core depends on.
type Logger interface {
	Debug(ctx context.Context, msg string, kvs ...KV)
	Info(ctx context.Context, msg string, kvs ...KV)
	Warn(ctx context.Context, msg string, kvs ...KV)
	Error(ctx context.Context, msg string, kvs ...KV)
}

// NopLogger discards everything. Used as the default when callers do not
// wire a real logger (e.g. in unit tests).
type NopLogger struct{}

func (NopLogger) Debug(context.Context, string, ...KV) {}
func (NopLogger) Info(context.Context, string, ...KV)  {}
func (NopLogger) Warn(context.Context, string, ...KV)  {}
func (NopLogger) Error(context.Context, string, ...KV) {}

// Metrics is the counter/gauge capability the core depends on, backed by an
// OpenTelemetry Meter in production.
type Metrics interface {
	IncCounter(ctx context.Context, name string, delta int64, kvs ...KV)
	RecordGauge(ctx context.Context, name string, value float64, kvs ...KV)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) IncCounter(context.Context, string, int64, ...KV)    {}
func (NopMetrics) RecordGauge(context.Context, string, float64, ...KV) {}

// Tracer is the span capability the core depends on, backed by an
// OpenTelemetry Tracer in production.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Span is the subset of trace.Span the core needs.
type Span interface {
	End()
	RecordError(err error)
}

// NopTracer discards everything, used as the default when callers do not
// wire a real tracer (e.g. in unit tests).
type NopTracer struct{}

// Start implements Tracer.
func (NopTracer) Start(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

type nopSpan struct{}

func (nopSpan) End()              {}
func (nopSpan) RecordError(error) {}

// OTelMetrics adapts an OpenTelemetry Meter to Metrics. Instrument lookup
// and lazy creation are guarded by mu: LifecycleController.Register and
// Unregister call IncCounter/RecordGauge on every concurrent registration
// (spec.md §5's concurrent-request model), so two goroutines racing to
// create the same first-seen instrument would otherwise be a concurrent map
// write.
type OTelMetrics struct {
	meter metric.Meter

	mu       sync.Mutex
	counters map[string]metric.Int64Counter
	gauges   map[string]metric.Float64Gauge
}

// NewOTelMetrics wraps meter. Instruments are created lazily per name.
func NewOTelMetrics(meter metric.Meter) *OTelMetrics {
	return &OTelMetrics{
		meter:    meter,
		counters: make(map[string]metric.Int64Counter),
		gauges:   make(map[string]metric.Float64Gauge),
	}
}

// NewGlobalMetrics constructs an OTelMetrics backed by the global
// MeterProvider, named after instrumentationName. Configure the global
// provider via otel.SetMeterProvider (or clue.ConfigureOpenTelemetry) before
// any registration happens; until then calls are effectively no-ops, the
// same caveat runtime/agent/telemetry/clue.go's NewClueMetrics documents.
func NewGlobalMetrics(instrumentationName string) *OTelMetrics {
	return NewOTelMetrics(otel.Meter(instrumentationName))
}

// IncCounter implements Metrics.
func (m *OTelMetrics) IncCounter(ctx context.Context, name string, delta int64, kvs ...KV) {
	m.mu.Lock()
	c, ok := m.counters[name]
	if !ok {
		var err error
		c, err = m.meter.Int64Counter(name)
		if err != nil {
			m.mu.Unlock()
			return
		}
		m.counters[name] = c
	}
	m.mu.Unlock()
	c.Add(ctx, delta, metric.WithAttributes(toAttrs(kvs)...))
}

// RecordGauge implements Metrics.
func (m *OTelMetrics) RecordGauge(ctx context.Context, name string, value float64, kvs ...KV) {
	m.mu.Lock()
	g, ok := m.gauges[name]
	if !ok {
		var err error
		g, err = m.meter.Float64Gauge(name)
		if err != nil {
			m.mu.Unlock()
			return
		}
		m.gauges[name] = g
	}
	m.mu.Unlock()
	g.Record(ctx, value, metric.WithAttributes(toAttrs(kvs)...))
}

// OTelTracer adapts an OpenTelemetry Tracer to Tracer.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer wraps tracer.
func NewOTelTracer(tracer trace.Tracer) *OTelTracer {
	return &OTelTracer{tracer: tracer}
}

// NewGlobalTracer constructs an OTelTracer backed by the global
// TracerProvider, named after instrumentationName. See NewGlobalMetrics for
// the global-provider configuration caveat.
func NewGlobalTracer(instrumentationName string) *OTelTracer {
	return NewOTelTracer(otel.Tracer(instrumentationName))
}

// Start implements Tracer.
func (t *OTelTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End()                  { s.span.End() }
func (s otelSpan) RecordError(err error) { s.span.RecordError(err) }
