package metrics

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	return m, reader
}

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) (int64, int) {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("Expected Sum[int64] data type for %s", name)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total, len(sum.DataPoints)
		}
	}

	t.Fatalf("%s metric not found", name)
	return 0, 0
}

func TestInitializeMetrics(t *testing.T) {
	m, _ := newTestMetrics(t)

	if m.mutationsTotal == nil {
		t.Error("mutationsTotal is nil")
	}
	if m.itemsAddedTotal == nil {
		t.Error("itemsAddedTotal is nil")
	}
	if m.persistFailuresTotal == nil {
		t.Error("persistFailuresTotal is nil")
	}
	if m.loadResultsTotal == nil {
		t.Error("loadResultsTotal is nil")
	}
}

func TestRecordMutation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordMutation(ctx, "add")
	m.RecordMutation(ctx, "add")
	m.RecordMutation(ctx, "clear")

	total, points := collectSum(t, reader, "cart_mutations_total")
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if points != 2 {
		t.Errorf("expected 2 data points (add, clear), got %d", points)
	}
}

func TestRecordItemsAdded(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordItemsAdded(ctx, 2)
	m.RecordItemsAdded(ctx, 3)

	total, _ := collectSum(t, reader, "cart_items_added_total")
	if total != 5 {
		t.Errorf("expected 5 items, got %d", total)
	}
}

func TestRecordPersistFailureAndLoad(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordPersistFailure(ctx, "remove")
	m.RecordLoad(ctx, "reset")

	if total, _ := collectSum(t, reader, "cart_persist_failures_total"); total != 1 {
		t.Errorf("expected 1 persist failure, got %d", total)
	}
	if total, _ := collectSum(t, reader, "cart_loads_total"); total != 1 {
		t.Errorf("expected 1 load, got %d", total)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	m.RecordMutation(ctx, "add")
	m.RecordItemsAdded(ctx, 1)
	m.RecordPersistFailure(ctx, "add")
	m.RecordLoad(ctx, "empty")
}
