package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable is a component with a start/stop lifecycle.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup owns a subscriber and the consumers reading from it.
type ConsumerGroup struct {
	subscriber message.Subscriber
	logger     *zap.Logger
	consumers  []Runnable
	running    []Runnable
}

func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers a consumer; it is started by the next Start.
func (g *ConsumerGroup) Add(consumer Runnable) {
	g.consumers = append(g.consumers, consumer)
}

// Start starts the consumers in order. On failure the ones already running
// are stopped and the group is left idle.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			g.stopRunning()

			return fmt.Errorf("start consumer %d of %d: %w", i+1, len(g.consumers), err)
		}

		g.running = append(g.running, consumer)
	}

	g.logger.Info("consumer group started", zap.Int("consumers", len(g.running)))

	return nil
}

// Shutdown stops the running consumers in reverse start order, then closes
// the subscriber. Every failure is reported.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("stopping consumer group", zap.Int("consumers", len(g.running)))

	errs := g.stopRunning()

	if err := g.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close subscriber: %w", err))
	}

	return errors.Join(errs...)
}

func (g *ConsumerGroup) stopRunning() []error {
	var errs []error

	for i := len(g.running) - 1; i >= 0; i-- {
		if err := g.running[i].Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}

	g.running = nil

	return errs
}
