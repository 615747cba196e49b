package database

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordQuery(t *testing.T) {
	t.Run("records duration per operation and counts failures", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

		metrics, err := NewMetrics(mp.Meter("test"))
		if err != nil {
			t.Fatalf("NewMetrics() failed: %v", err)
		}

		ctx := context.Background()
		metrics.RecordQuery(ctx, "put_snapshot", 0.1, nil)
		metrics.RecordQuery(ctx, "get_snapshot", 0.05, nil)
		metrics.RecordQuery(ctx, "put_snapshot", 0.2, errors.New("connection reset"))

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			t.Fatalf("Failed to collect metrics: %v", err)
		}

		foundHistogram := false
		foundErrors := false
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				switch m.Name {
				case "db_query_duration_seconds":
					foundHistogram = true
					histogram, ok := m.Data.(metricdata.Histogram[float64])
					if !ok {
						t.Fatal("Expected Histogram[float64] data type")
					}
					if len(histogram.DataPoints) != 3 {
						t.Errorf("Expected 3 data points (operation x status), got %d", len(histogram.DataPoints))
					}
				case "db_query_errors_total":
					foundErrors = true
					sum, ok := m.Data.(metricdata.Sum[int64])
					if !ok {
						t.Fatal("Expected Sum[int64] data type")
					}
					if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
						t.Errorf("Expected one failed put_snapshot, got %+v", sum.DataPoints)
					}
				}
			}
		}

		if !foundHistogram {
			t.Error("db_query_duration_seconds metric not found")
		}
		if !foundErrors {
			t.Error("db_query_errors_total metric not found")
		}
	})

	t.Run("nil metrics are ignored", func(t *testing.T) {
		var metrics *Metrics
		metrics.RecordQuery(context.Background(), "get_snapshot", 0.1, nil)
	})
}
