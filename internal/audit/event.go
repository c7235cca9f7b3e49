package audit

import "time"

// TopicMappingCreated is the topic MappingCreatedEvent is published on.
const TopicMappingCreated = "mapping.created"

// MappingCreatedEvent records the creation of a short code.
type MappingCreatedEvent struct {
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	CreatedAt time.Time `json:"createdAt"`
	ClientIP  string    `json:"clientIp,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}
