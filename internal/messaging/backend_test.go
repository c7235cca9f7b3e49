package messaging_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/serroba/url-shortener/internal/audit"
	"github.com/serroba/url-shortener/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInProcess_RoundTrip(t *testing.T) {
	pubSub := messaging.NewInProcess(zap.NewNop())

	received := make(chan *audit.MappingCreatedEvent, 1)
	consumer := messaging.NewConsumer(
		pubSub,
		audit.TopicMappingCreated,
		func(_ context.Context, event *audit.MappingCreatedEvent) error {
			received <- event

			return nil
		},
		zap.NewNop(),
	)

	require.NoError(t, consumer.Start(context.Background()))

	publish := messaging.NewPublishFunc[audit.MappingCreatedEvent](pubSub, audit.TopicMappingCreated)
	require.NoError(t, publish(context.Background(), &audit.MappingCreatedEvent{Code: "abc12345", LongURL: "https://example.com"}))

	select {
	case event := <-received:
		assert.Equal(t, "abc12345", event.Code)
		assert.Equal(t, "https://example.com", event.LongURL)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	require.NoError(t, consumer.Shutdown())
	require.NoError(t, pubSub.Close())
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := messaging.NewZapLogger(zap.New(core))

	logger.Info("info message", watermill.LogFields{"topic": "a"})
	logger.Debug("debug message", nil)
	logger.Trace("trace message", nil)
	logger.Error("error message", errors.New("boom"), watermill.LogFields{"topic": "b"})
	logger.With(watermill.LogFields{"consumer": "c"}).Info("scoped message", nil)

	entries := logs.All()
	require.Len(t, entries, 5)

	assert.Equal(t, "info message", entries[0].Message)
	assert.Equal(t, "a", entries[0].ContextMap()["topic"])
	assert.Equal(t, zap.DebugLevel, entries[2].Level)
	assert.Equal(t, zap.ErrorLevel, entries[3].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
	assert.Equal(t, "c", entries[4].ContextMap()["consumer"])
}
