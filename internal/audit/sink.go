package audit

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/url-shortener/internal/messaging"
	"go.uber.org/zap"
)

// Sink persists audit events.
type Sink interface {
	RecordMappingCreated(ctx context.Context, event *MappingCreatedEvent) error
}

// LogSink writes each audit event as a structured log entry.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink writing to logger.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("audit")}
}

func (s *LogSink) RecordMappingCreated(_ context.Context, event *MappingCreatedEvent) error {
	s.logger.Info("mapping created",
		zap.String("code", event.Code),
		zap.String("longUrl", event.LongURL),
		zap.Time("createdAt", event.CreatedAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("userAgent", event.UserAgent),
	)

	return nil
}

// NewConsumer returns a consumer feeding mapping.created events into sink.
func NewConsumer(subscriber message.Subscriber, sink Sink, logger *zap.Logger) *messaging.Consumer[MappingCreatedEvent] {
	return messaging.NewConsumer[MappingCreatedEvent](subscriber, TopicMappingCreated, sink.RecordMappingCreated, logger)
}
