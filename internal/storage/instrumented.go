package storage

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voto/internal/platform/metrics"
)

var tracer = otel.Tracer("voto/internal/storage")

// Instrumented decorates a RecordStore with latency metrics and tracing spans.
type Instrumented struct {
	next    RecordStore
	backend string
	metrics *metrics.Metrics
}

// NewInstrumented wraps next. A nil metrics disables metric recording but
// spans are still opened.
func NewInstrumented(next RecordStore, backend string, m *metrics.Metrics) *Instrumented {
	return &Instrumented{next: next, backend: backend, metrics: m}
}

func (s *Instrumented) Load(ctx context.Context, collection string) (Records, error) {
	ctx, span := s.startSpan(ctx, "storage.Load", collection)
	defer span.End()

	start := time.Now()
	records, err := s.next.Load(ctx, collection)
	s.observe("load", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("voto.records", len(records)))
	return records, nil
}

func (s *Instrumented) Save(ctx context.Context, collection string, records Records) error {
	ctx, span := s.startSpan(ctx, "storage.Save", collection)
	defer span.End()

	start := time.Now()
	err := s.next.Save(ctx, collection, records)
	s.observe("save", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return err
	}
	span.SetAttributes(attribute.Int("voto.records", len(records)))
	return nil
}

func (s *Instrumented) startSpan(ctx context.Context, name, collection string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("voto.store.backend", s.backend),
			attribute.String("voto.collection", collection),
		),
	)
}

func (s *Instrumented) observe(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveStore(s.backend, operation, start, err)
}
