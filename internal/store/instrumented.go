package store

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/gasdesk/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrumented wraps a DocumentStore and records operation counts and
// durations against the telemetry metrics.
type Instrumented struct {
	next    DocumentStore
	backend string
	metrics *telemetry.Metrics
}

var _ DocumentStore = (*Instrumented)(nil)

// NewInstrumented wraps next. backend names the implementation in metric
// attributes ("memory", "postgres", "bolt").
func NewInstrumented(next DocumentStore, backend string) *Instrumented {
	return &Instrumented{
		next:    next,
		backend: backend,
		metrics: telemetry.GetMetrics(),
	}
}

func (s *Instrumented) record(ctx context.Context, op, collection string, started time.Time, err error) {
	outcome := "ok"
	if err != nil && !errors.Is(err, ErrNotFound) {
		outcome = "error"
		log.Error().Err(err).
			Str("backend", s.backend).
			Str("op", op).
			Str("collection", collection).
			Msg("store operation failed")
	}

	attrs := metric.WithAttributes(
		attribute.String("backend", s.backend),
		attribute.String("op", op),
		attribute.String("collection", collection),
		attribute.String("outcome", outcome),
	)
	s.metrics.StoreOperationsTotal.Add(ctx, 1, attrs)
	s.metrics.StoreOperationDuration.Record(ctx, float64(time.Since(started).Milliseconds()), attrs)
}

func (s *Instrumented) Get(ctx context.Context, collection, key string) (Document, error) {
	started := time.Now()
	doc, err := s.next.Get(ctx, collection, key)
	s.record(ctx, "get", collection, started, err)
	return doc, err
}

func (s *Instrumented) Put(ctx context.Context, collection, key string, doc Document) error {
	started := time.Now()
	err := s.next.Put(ctx, collection, key, doc)
	s.record(ctx, "put", collection, started, err)
	return err
}

func (s *Instrumented) Add(ctx context.Context, collection string, doc Document) (string, error) {
	started := time.Now()
	key, err := s.next.Add(ctx, collection, doc)
	s.record(ctx, "add", collection, started, err)
	return key, err
}

func (s *Instrumented) List(ctx context.Context, collection string) iter.Seq2[Entry, error] {
	return s.walk(ctx, "list", collection, s.next.List(ctx, collection))
}

func (s *Instrumented) Find(ctx context.Context, collection, field, value string) iter.Seq2[Entry, error] {
	return s.walk(ctx, "find", collection, s.next.Find(ctx, collection, field, value))
}

// walk times a whole iteration, from the first pull to the consumer stopping.
func (s *Instrumented) walk(ctx context.Context, op, collection string, seq iter.Seq2[Entry, error]) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		started := time.Now()
		var walkErr error
		defer func() { s.record(ctx, op, collection, started, walkErr) }()

		for entry, err := range seq {
			if err != nil {
				walkErr = err
			}
			if !yield(entry, err) {
				return
			}
		}
	}
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
