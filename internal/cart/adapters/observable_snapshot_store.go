package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/cartwidget/internal/cart/ports"
	"github.com/dejobratic/cartwidget/internal/database"
	"github.com/dejobratic/cartwidget/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableSnapshotStore wraps a SnapshotStore with spans and query timing.
type ObservableSnapshotStore struct {
	store   ports.SnapshotStore
	metrics *database.Metrics
}

func NewObservableSnapshotStore(store ports.SnapshotStore, metrics *database.Metrics) *ObservableSnapshotStore {
	return &ObservableSnapshotStore{
		store:   store,
		metrics: metrics,
	}
}

func (s *ObservableSnapshotStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "SnapshotStore.Get")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("snapshot.key", key),
		attribute.String("operation", "get"),
	)

	start := time.Now()
	payload, found, err := s.store.Get(ctx, key)
	s.metrics.RecordQuery(ctx, "get_snapshot", time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return "", false, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.Bool("snapshot.found", found),
		attribute.Int("snapshot.bytes", len(payload)),
	)
	telemetry.SetSpanSuccess(span)
	return payload, found, nil
}

func (s *ObservableSnapshotStore) Put(ctx context.Context, key string, payload string) error {
	ctx, span := telemetry.StartSpan(ctx, "SnapshotStore.Put")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("snapshot.key", key),
		attribute.String("operation", "put"),
		attribute.Int("snapshot.bytes", len(payload)),
	)

	start := time.Now()
	err := s.store.Put(ctx, key, payload)
	s.metrics.RecordQuery(ctx, "put_snapshot", time.Since(start).Seconds(), err)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
