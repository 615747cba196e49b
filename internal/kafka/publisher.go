package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dejobratic/cartwidget/internal/cart/ports"
	kafkago "github.com/segmentio/kafka-go"
)

// DefaultTopic receives cart change events when no topic is configured.
const DefaultTopic = "cart-events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher forwards cart change events to a Kafka topic, keyed by storage
// key. Failures are logged; they never reach the cart.
type Publisher struct {
	writer  messageWriter
	topic   string
	key     string
	timeout time.Duration
	logger  *slog.Logger
	metrics *Metrics
}

// NewPublisher creates a publisher backed by a kafka-go writer.
func NewPublisher(brokers []string, topic, key string, logger *slog.Logger, metrics *Metrics) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return newPublisher(writer, topic, key, logger, metrics)
}

func newPublisher(writer messageWriter, topic, key string, logger *slog.Logger, metrics *Metrics) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		writer:  writer,
		topic:   topic,
		key:     key,
		timeout: 5 * time.Second,
		logger:  logger,
		metrics: metrics,
	}
}

// CartChanged implements ports.ChangeListener.
func (p *Publisher) CartChanged(ctx context.Context, event ports.ChangeEvent) {
	if event.Kind == ports.EventLoaded {
		return
	}

	if err := p.publish(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish cart event",
			"kind", event.Kind,
			"version", event.Version,
			"error", err,
		)
	}
}

func (p *Publisher) publish(ctx context.Context, event ports.ChangeEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode cart event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(p.key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_kind", Value: []byte(event.Kind)},
		},
	})
	p.metrics.RecordPublish(ctx, p.topic, time.Since(start).Seconds(), err == nil)
	if err != nil {
		return fmt.Errorf("write cart event: %w", err)
	}
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
