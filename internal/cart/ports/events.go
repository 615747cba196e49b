package ports

import (
	"context"

	"github.com/dejobratic/cartwidget/internal/cart/domain"
)

// EventKind names the cart mutation that produced a ChangeEvent.
type EventKind string

const (
	EventLoaded      EventKind = "loaded"
	EventItemAdded   EventKind = "item_added"
	EventItemRemoved EventKind = "item_removed"
	EventCleared     EventKind = "cleared"
)

// ChangeEvent carries the full cart state after a mutation. Version increases
// with every event emitted by a store, so subscribers can drop stale deliveries.
type ChangeEvent struct {
	Kind      EventKind        `json:"kind"`
	Version   uint64           `json:"version"`
	Items     domain.Cart      `json:"items"`
	Total     float64          `json:"total"`
	ItemCount int              `json:"item_count"`
	Item      *domain.LineItem `json:"item,omitempty"`
}

// ChangeListener reacts to cart state changes.
type ChangeListener interface {
	CartChanged(ctx context.Context, event ChangeEvent)
}

// ChangeListenerFunc adapts a function to ChangeListener.
type ChangeListenerFunc func(ctx context.Context, event ChangeEvent)

func (f ChangeListenerFunc) CartChanged(ctx context.Context, event ChangeEvent) {
	f(ctx, event)
}

// Notifier shows a short-lived message to the user.
type Notifier interface {
	Show(message string)
}
