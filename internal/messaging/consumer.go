package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// ErrAlreadyStarted is returned by Start on a running consumer.
var ErrAlreadyStarted = errors.New("consumer already started")

// errUndeliverable marks messages that no amount of redelivery can fix.
var errUndeliverable = errors.New("undeliverable message")

// Handler processes a single event.
type Handler[T any] func(ctx context.Context, event *T) error

// Consumer feeds the messages of one topic into a typed handler.
//
// Handler failures are nacked for redelivery. Payloads that do not decode,
// or that carry another topic's event type, are acked and dropped.
type Consumer[T any] struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler[T]
	logger     *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewConsumer creates a consumer of topic decoding payloads into T.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		topic:      topic,
		handler:    handler,
		logger:     logger.With(zap.String("topic", topic)),
	}
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and processes messages in a background goroutine.
// A failed Start leaves the consumer stopped; it may be started again.
func (c *Consumer[T]) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(runCtx, c.topic)
	if err != nil {
		cancel()

		return fmt.Errorf("subscribe %s: %w", c.topic, err)
	}

	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(runCtx, msgs, c.done)

	return nil
}

func (c *Consumer[T]) run(ctx context.Context, msgs <-chan *message.Message, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.settle(msg, c.process(ctx, msg))
		}
	}
}

func (c *Consumer[T]) process(ctx context.Context, msg *message.Message) error {
	if eventType := msg.Metadata.Get(MetadataEventType); eventType != "" && eventType != c.topic {
		return fmt.Errorf("%w: event type %q", errUndeliverable, eventType)
	}

	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("%w: decode: %w", errUndeliverable, err)
	}

	return c.handler(ctx, &event)
}

func (c *Consumer[T]) settle(msg *message.Message, err error) {
	switch {
	case err == nil:
		msg.Ack()
		c.logger.Debug("processed event", zap.String("message_uuid", msg.UUID))
	case errors.Is(err, errUndeliverable):
		msg.Ack()
		c.logger.Warn("dropped event", zap.String("message_uuid", msg.UUID), zap.Error(err))
	default:
		msg.Nack()
		c.logger.Error("failed to handle event", zap.String("message_uuid", msg.UUID), zap.Error(err))
	}
}

// Shutdown stops the consumer and waits for the in-flight message to settle.
// It returns immediately when the consumer is not running.
func (c *Consumer[T]) Shutdown() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	<-done

	return nil
}
