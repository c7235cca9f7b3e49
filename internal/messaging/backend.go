package messaging

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewInProcess returns a Go channel pub/sub usable as both publisher and
// subscriber inside a single process.
func NewInProcess(logger *zap.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, NewZapLogger(logger))
}

// NewRedisPublisher returns a publisher writing to Redis streams.
func NewRedisPublisher(client redis.UniversalClient, logger *zap.Logger) (*redisstream.Publisher, error) {
	pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: client,
	}, NewZapLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create redis stream publisher: %w", err)
	}

	return pub, nil
}

// NewRedisSubscriber returns a subscriber reading Redis streams as part of
// the given consumer group.
func NewRedisSubscriber(client redis.UniversalClient, group string, logger *zap.Logger) (*redisstream.Subscriber, error) {
	sub, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		ConsumerGroup: group,
	}, NewZapLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create redis stream subscriber: %w", err)
	}

	return sub, nil
}
