package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	mutationsTotal       metric.Int64Counter
	itemsAddedTotal      metric.Int64Counter
	persistFailuresTotal metric.Int64Counter
	loadResultsTotal     metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.mutationsTotal, err = meter.Int64Counter(
		"cart_mutations_total",
		metric.WithDescription("Total number of applied cart mutations"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cart_mutations_total counter: %w", err)
	}

	m.itemsAddedTotal, err = meter.Int64Counter(
		"cart_items_added_total",
		metric.WithDescription("Total quantity of items added to the cart"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cart_items_added_total counter: %w", err)
	}

	m.persistFailuresTotal, err = meter.Int64Counter(
		"cart_persist_failures_total",
		metric.WithDescription("Total number of failed snapshot writes"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cart_persist_failures_total counter: %w", err)
	}

	m.loadResultsTotal, err = meter.Int64Counter(
		"cart_loads_total",
		metric.WithDescription("Total number of snapshot loads by outcome"),
		metric.WithUnit("{load}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cart_loads_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordMutation(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.mutationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

func (m *Metrics) RecordItemsAdded(ctx context.Context, qty int) {
	if m == nil {
		return
	}
	m.itemsAddedTotal.Add(ctx, int64(qty))
}

func (m *Metrics) RecordPersistFailure(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.persistFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordLoad counts a snapshot load. Outcome is one of "restored", "empty" or "reset".
func (m *Metrics) RecordLoad(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.loadResultsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
