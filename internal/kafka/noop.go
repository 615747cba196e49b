package kafka

import (
	"context"
	"log/slog"

	"github.com/dejobratic/cartwidget/internal/cart/ports"
)

// NoopPublisher logs cart events without sending them to Kafka. Used when no brokers are configured.
type NoopPublisher struct{}

// NewNoopPublisher returns a new no-op event publisher.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (n *NoopPublisher) CartChanged(ctx context.Context, event ports.ChangeEvent) {
	slog.DebugContext(ctx, "event::cart_"+string(event.Kind),
		"version", event.Version,
		"item_count", event.ItemCount,
	)
}

func (n *NoopPublisher) Close() error {
	return nil
}
