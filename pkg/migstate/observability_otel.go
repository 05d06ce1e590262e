package migstate

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// OTelObserver implements Observer using OpenTelemetry for traces and metrics.
// This provides automatic integration with OTLP exporters (Jaeger, Tempo, Datadog, etc.).
//
// Example:
//
//	tracer := otel.Tracer("migstate")
//	meter := otel.Meter("migstate")
//	observer, _ := migstate.NewOTelObserver(tracer, meter)
//	store := migstate.NewStore(backend, migstate.WithObserver(observer))
type OTelObserver struct {
	tracer trace.Tracer

	// Metrics
	opDuration     metric.Float64Histogram
	transitions    metric.Int64Counter
	backendLatency metric.Float64Histogram
	backendErrors  metric.Int64Counter
}

// NewOTelObserver creates an OpenTelemetry observer.
func NewOTelObserver(tracer trace.Tracer, meter metric.Meter) (*OTelObserver, error) {
	opDuration, err := meter.Float64Histogram(
		"migstate.op.duration",
		metric.WithDescription("Duration of store operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create op duration histogram: %w", err)
	}

	transitions, err := meter.Int64Counter(
		"migstate.stage.transitions",
		metric.WithDescription("Number of stage transitions"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transitions counter: %w", err)
	}

	backendLatency, err := meter.Float64Histogram(
		"migstate.backend.latency",
		metric.WithDescription("Latency of raw backend operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend latency histogram: %w", err)
	}

	backendErrors, err := meter.Int64Counter(
		"migstate.backend.errors",
		metric.WithDescription("Number of backend operation failures"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend errors counter: %w", err)
	}

	return &OTelObserver{
		tracer:         tracer,
		opDuration:     opDuration,
		transitions:    transitions,
		backendLatency: backendLatency,
		backendErrors:  backendErrors,
	}, nil
}

func (o *OTelObserver) OnEnsure(ctx context.Context, event *EnsureEvent) {
	o.opDuration.Record(ctx, event.Duration.Seconds(), metric.WithAttributes(
		attribute.String("op", "ensure"),
		attribute.Bool("success", event.Error == nil),
		attribute.Bool("created", event.Created),
	))

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.AddEvent("ledger.ensure", trace.WithAttributes(
			attribute.String("location", event.Location),
			attribute.Bool("created", event.Created),
		))
	}
}

func (o *OTelObserver) OnGet(ctx context.Context, event *GetEvent) {
	o.opDuration.Record(ctx, event.Duration.Seconds(), metric.WithAttributes(
		attribute.String("op", "get"),
		attribute.Bool("success", event.Error == nil),
	))

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.AddEvent("ledger.get", trace.WithAttributes(
			attribute.String("stage", event.Stage),
			attribute.String("status", string(event.Status)),
		))
	}
}

func (o *OTelObserver) OnSet(ctx context.Context, event *SetEvent) {
	o.opDuration.Record(ctx, event.Duration.Seconds(), metric.WithAttributes(
		attribute.String("op", "set"),
		attribute.Bool("success", event.Error == nil),
	))

	if event.Error == nil {
		o.transitions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("desired", string(event.Desired)),
			attribute.String("final", string(event.Final)),
			attribute.Bool("changed", event.Changed),
		))
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.AddEvent("ledger.set", trace.WithAttributes(
			attribute.String("stage", event.Stage),
			attribute.String("desired", string(event.Desired)),
			attribute.String("final", string(event.Final)),
			attribute.Bool("changed", event.Changed),
		))
	}
}

func (o *OTelObserver) OnBackendOp(ctx context.Context, event *BackendOpEvent) {
	attrs := []attribute.KeyValue{
		attribute.String("op", event.Op),
	}

	o.backendLatency.Record(ctx, event.Latency.Seconds(), metric.WithAttributes(attrs...))

	if event.Error != nil && !event.NotFound {
		o.backendErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
