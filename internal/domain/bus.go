package domain

import (
	"context"
)

// EventBus defines the interface for event-driven communication.
// Supports Go channels (single process) or NATS (multiple replicas).
type EventBus interface {
	// Publish sends a message to a topic.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe registers a handler for a topic.
	// Returns a subscription that can be used to unsubscribe.
	Subscribe(ctx context.Context, topic string, handler MessageHandler) (Subscription, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// MessageHandler processes incoming messages.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message represents an event message.
type Message struct {
	ID        string            `json:"id"`
	Topic     string            `json:"topic"`
	Payload   []byte            `json:"payload"`
	Metadata  map[string]string `json:"metadata"`
	Timestamp int64             `json:"timestamp"`
}

// Subscription represents an active subscription.
type Subscription interface {
	// Unsubscribe stops receiving messages.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// EventBusConfig holds configuration for event bus initialization.
type EventBusConfig struct {
	// Type is the bus type: "channel" or "nats"
	Type string `yaml:"type" env:"AIRPASS_BUS_TYPE" env-default:"channel"`

	// Channel settings
	ChannelBufferSize int `yaml:"channelBufferSize" env:"AIRPASS_BUS_BUFFER" env-default:"1000"`

	// NATS settings
	NATSUrl           string `yaml:"natsUrl" env:"AIRPASS_NATS_URL" env-default:"nats://localhost:4222"`
	NATSToken         string `yaml:"natsToken" env:"AIRPASS_NATS_TOKEN"`
	NATSMaxReconnects int    `yaml:"natsMaxReconnects" env:"AIRPASS_NATS_MAX_RECONNECTS" env-default:"10"`
	NATSReconnectWait int    `yaml:"natsReconnectWait" env:"AIRPASS_NATS_RECONNECT_WAIT" env-default:"2"` // seconds
}

// TopicRuleChanged carries RuleChangedEvent payloads after every admin write.
const TopicRuleChanged = "airpass.rule.changed"

// Rule change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RuleChangedEvent is published when a baggage rule is created, updated or deleted.
type RuleChangedEvent struct {
	RuleID      string `json:"ruleId"`
	AirlineCode string `json:"airlineCode"`
	Action      string `json:"action"`
}
