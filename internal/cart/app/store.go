package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dejobratic/cartwidget/internal/cart/domain"
	"github.com/dejobratic/cartwidget/internal/cart/metrics"
	"github.com/dejobratic/cartwidget/internal/cart/ports"
	"github.com/dejobratic/cartwidget/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Store owns the cart and keeps it in sync with the persisted snapshot.
// Every mutation writes the full snapshot back before listeners are notified.
// No operation returns an error: bad input is coerced and storage failures
// are logged.
type Store struct {
	mu        sync.Mutex
	items     domain.Cart
	version   uint64
	listeners map[int]ports.ChangeListener
	nextID    int
	disposed  bool

	dispatchMu   sync.Mutex
	dispatchCond *sync.Cond
	delivered    uint64

	snapshots ports.SnapshotStore
	key       string
	notifier  ports.Notifier
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Store)

func WithStorageKey(key string) Option {
	return func(s *Store) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

func WithNotifier(n ports.Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// NewStore creates an empty store. Call Load to restore the persisted cart.
func NewStore(snapshots ports.SnapshotStore, opts ...Option) *Store {
	s := &Store{
		items:     domain.Cart{},
		listeners: make(map[int]ports.ChangeListener),
		snapshots: snapshots,
		key:       domain.DefaultStorageKey,
		logger:    slog.Default(),
	}
	s.dispatchCond = sync.NewCond(&s.dispatchMu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StorageKey returns the key of the persisted slot.
func (s *Store) StorageKey() string {
	return s.key
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(listener ports.ChangeListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = listener

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Load replaces the in-memory cart with the persisted snapshot. A missing or
// unreadable snapshot resets the cart to empty.
func (s *Store) Load(ctx context.Context) {
	ctx, span := telemetry.StartSpan(ctx, "CartStore.Load")
	defer span.End()

	items, outcome := s.readSnapshot(ctx)
	s.metrics.RecordLoad(ctx, outcome)

	telemetry.AddSpanAttributes(span,
		attribute.String("cart.load_outcome", outcome),
		attribute.Int("cart.entries", len(items)),
	)

	s.mu.Lock()
	s.items = items
	event := s.eventLocked(ports.EventLoaded, nil)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "cart loaded",
		"key", s.key,
		"outcome", outcome,
		"entries", len(event.Items),
		"item_count", event.ItemCount,
	)

	s.dispatch(ctx, event)
}

func (s *Store) readSnapshot(ctx context.Context) (domain.Cart, string) {
	payload, found, err := s.snapshots.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read cart snapshot, starting empty", "key", s.key, "error", err)
		return domain.Cart{}, "reset"
	}
	if !found {
		return domain.Cart{}, "empty"
	}

	items, err := domain.DecodeSnapshot(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding malformed cart snapshot", "key", s.key, "error", err)
		return domain.Cart{}, "reset"
	}
	return items, "restored"
}

// Add merges qty units of (name, price) into the cart, persists it and shows
// a notification. A blank name is ignored.
func (s *Store) Add(ctx context.Context, name string, price float64, qty int) {
	ctx, span := telemetry.StartSpan(ctx, "CartStore.Add")
	defer span.End()

	if strings.TrimSpace(name) == "" {
		s.logger.WarnContext(ctx, "ignoring add without item name", "price", price, "qty", qty)
		return
	}

	qty = domain.NormalizeQty(qty)

	s.mu.Lock()
	item, merged := s.items.Add(name, price, qty)
	s.persistLocked(ctx, "add")
	event := s.eventLocked(ports.EventItemAdded, &item)
	s.mu.Unlock()

	telemetry.AddSpanAttributes(span,
		attribute.String("cart.item.name", item.Name),
		attribute.Float64("cart.item.price", item.Price),
		attribute.Int("cart.item.qty", item.Qty),
		attribute.Bool("cart.item.merged", merged),
	)

	s.metrics.RecordMutation(ctx, "add")
	s.metrics.RecordItemsAdded(ctx, qty)

	s.logger.InfoContext(ctx, "item added to cart",
		"name", item.Name,
		"price", item.Price,
		"qty", item.Qty,
		"merged", merged,
	)

	s.dispatch(ctx, event)

	if s.notifier != nil {
		s.notifier.Show(fmt.Sprintf("%s added to cart", name))
	}
}

// AddRaw adds an item described by untyped attribute values, as carried by
// quick-add controls. Non-numeric price and qty fall back to 0 and 1.
func (s *Store) AddRaw(ctx context.Context, name, price, qty string) {
	s.Add(ctx, name, domain.ParsePrice(price), domain.ParseQty(qty))
}

// Remove deletes the entry at index. Out-of-range indexes are ignored.
func (s *Store) Remove(ctx context.Context, index int) {
	ctx, span := telemetry.StartSpan(ctx, "CartStore.Remove")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.Int("cart.index", index))

	s.mu.Lock()
	removed, ok := s.items.Remove(index)
	if !ok {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "ignoring remove of out-of-range index", "index", index)
		return
	}
	s.persistLocked(ctx, "remove")
	event := s.eventLocked(ports.EventItemRemoved, &removed)
	s.mu.Unlock()

	s.metrics.RecordMutation(ctx, "remove")
	s.logger.InfoContext(ctx, "item removed from cart", "index", index, "name", removed.Name)

	s.dispatch(ctx, event)
}

// Clear empties the cart and persists the empty snapshot.
func (s *Store) Clear(ctx context.Context) {
	ctx, span := telemetry.StartSpan(ctx, "CartStore.Clear")
	defer span.End()

	s.mu.Lock()
	s.items.Clear()
	s.persistLocked(ctx, "clear")
	event := s.eventLocked(ports.EventCleared, nil)
	s.mu.Unlock()

	s.metrics.RecordMutation(ctx, "clear")
	s.logger.InfoContext(ctx, "cart cleared")

	s.dispatch(ctx, event)
}

// Total returns the sum of price times quantity over all entries.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Total()
}

// ItemCount returns the sum of all quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.ItemCount()
}

// Items returns a copy of the current entries.
func (s *Store) Items() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// Dispose detaches all listeners. Mutations after Dispose still persist but
// notify nobody.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = make(map[int]ports.ChangeListener)
	s.disposed = true
}

func (s *Store) persistLocked(ctx context.Context, operation string) {
	payload, err := domain.EncodeSnapshot(s.items)
	if err == nil {
		err = s.snapshots.Put(ctx, s.key, payload)
	}
	if err != nil {
		s.metrics.RecordPersistFailure(ctx, operation)
		s.logger.ErrorContext(ctx, "failed to persist cart snapshot",
			"key", s.key,
			"operation", operation,
			"error", err,
		)
	}
}

func (s *Store) eventLocked(kind ports.EventKind, item *domain.LineItem) ports.ChangeEvent {
	s.version++
	return ports.ChangeEvent{
		Kind:      kind,
		Version:   s.version,
		Items:     s.items.Clone(),
		Total:     s.items.Total(),
		ItemCount: s.items.ItemCount(),
		Item:      item,
	}
}

// dispatch delivers events outside the state lock so listeners may read the
// store. Events are handed out strictly in version order: a mutation whose
// event was versioned later waits until every earlier event has been
// delivered. A listener must therefore not mutate the store synchronously.
func (s *Store) dispatch(ctx context.Context, event ports.ChangeEvent) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	for s.delivered+1 < event.Version {
		s.dispatchCond.Wait()
	}
	defer func() {
		s.delivered = event.Version
		s.dispatchCond.Broadcast()
	}()

	for _, l := range s.activeListeners() {
		l.CartChanged(ctx, event)
	}
}

func (s *Store) activeListeners() []ports.ChangeListener {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil
	}
	listeners := make([]ports.ChangeListener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	return listeners
}
