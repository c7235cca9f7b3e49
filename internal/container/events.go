package container

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/audit"
	"github.com/serroba/url-shortener/internal/messaging"
	"go.uber.org/zap"
)

// AuditConsumerGroup is the Redis stream consumer group the auditor joins.
const AuditConsumerGroup = "auditor"

// EventsPackage provides the mapping-created publish function selected by
// Options.Events. With "memory" an audit consumer runs in-process.
func EventsPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*gochannel.GoChannel, error) {
		return messaging.NewInProcess(do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		client, err := do.Invoke[*RedisClient](i)
		if err != nil {
			return nil, err
		}

		publisher, err := messaging.NewRedisPublisher(client.Client, logger)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[audit.MappingCreatedEvent], error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Events {
		case "", "none":
			return messaging.NoopPublish[audit.MappingCreatedEvent](), nil
		case "memory":
			if _, err := do.Invoke[*messaging.ConsumerGroup](i); err != nil {
				return nil, err
			}

			pubSub := do.MustInvoke[*gochannel.GoChannel](i)

			return messaging.NewPublishFunc[audit.MappingCreatedEvent](pubSub, audit.TopicMappingCreated), nil
		case "redis":
			group, err := do.Invoke[*messaging.PublisherGroup](i)
			if err != nil {
				return nil, err
			}

			return messaging.NewPublishFunc[audit.MappingCreatedEvent](group.Publisher(), audit.TopicMappingCreated), nil
		default:
			return nil, fmt.Errorf("unknown events backend %q", opts.Events)
		}
	})

	// In-process audit consumer, started on first use.
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		pubSub := do.MustInvoke[*gochannel.GoChannel](i)

		group := messaging.NewConsumerGroup(pubSub, logger)
		group.Add(audit.NewConsumer(pubSub, audit.NewLogSink(logger), logger))

		if err := group.Start(context.Background()); err != nil {
			return nil, err
		}

		return group, nil
	})
}

// AuditorPackage provides the *messaging.ConsumerGroup that reads mapping
// events from Redis streams into the audit log. It is not started.
func AuditorPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		client, err := do.Invoke[*RedisClient](i)
		if err != nil {
			return nil, err
		}

		subscriber, err := messaging.NewRedisSubscriber(client.Client, AuditConsumerGroup, logger)
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(audit.NewConsumer(subscriber, audit.NewLogSink(logger), logger))

		return group, nil
	})
}
