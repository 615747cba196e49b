package adapters_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dejobratic/cartwidget/internal/cart/adapters"
	"github.com/dejobratic/cartwidget/internal/cart/adapters/memory"
	"github.com/dejobratic/cartwidget/internal/database"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection reset")
}

func (failingStore) Put(context.Context, string, string) error {
	return errors.New("connection reset")
}

func setup(t *testing.T) (*tracetest.InMemoryExporter, *sdkmetric.ManualReader, *database.Metrics) {
	t.Helper()

	exp := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exp))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(nil) })

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := database.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	return exp, reader, m
}

func TestObservableSnapshotStore(t *testing.T) {
	t.Run("delegates and records spans and query timings", func(t *testing.T) {
		exp, reader, m := setup(t)
		store := adapters.NewObservableSnapshotStore(memory.NewSnapshotStore(), m)
		ctx := context.Background()

		if err := store.Put(ctx, "cart_v1", "[]"); err != nil {
			t.Fatalf("Put() failed: %v", err)
		}
		payload, found, err := store.Get(ctx, "cart_v1")
		if err != nil || !found || payload != "[]" {
			t.Fatalf("Get() = %q, %v, %v", payload, found, err)
		}

		spans := exp.GetSpans()
		if len(spans) != 2 {
			t.Fatalf("expected 2 spans, got %d", len(spans))
		}
		if spans[0].Name != "SnapshotStore.Put" || spans[1].Name != "SnapshotStore.Get" {
			t.Errorf("unexpected span names %s, %s", spans[0].Name, spans[1].Name)
		}
		for _, s := range spans {
			if s.Status.Code != codes.Ok {
				t.Errorf("expected Ok status on %s, got %v", s.Name, s.Status.Code)
			}
		}

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			t.Fatalf("Failed to collect metrics: %v", err)
		}
		var points int
		for _, sm := range rm.ScopeMetrics {
			for _, metric := range sm.Metrics {
				if metric.Name == "db_query_duration_seconds" {
					points = len(metric.Data.(metricdata.Histogram[float64]).DataPoints)
				}
			}
		}
		if points != 2 {
			t.Errorf("expected 2 data points (get, put), got %d", points)
		}
	})

	t.Run("records errors on spans", func(t *testing.T) {
		exp, _, m := setup(t)
		store := adapters.NewObservableSnapshotStore(failingStore{}, m)
		ctx := context.Background()

		if err := store.Put(ctx, "cart_v1", "[]"); err == nil {
			t.Error("expected Put() error")
		}
		if _, _, err := store.Get(ctx, "cart_v1"); err == nil {
			t.Error("expected Get() error")
		}

		for _, s := range exp.GetSpans() {
			if s.Status.Code != codes.Error {
				t.Errorf("expected Error status on %s, got %v", s.Name, s.Status.Code)
			}
		}
	})
}
