package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/airpass/airpass/internal/domain"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// New creates a new event bus based on configuration.
// "channel" keeps events inside the process; "nats" fans them out to every replica.
func New(cfg domain.EventBusConfig) (domain.EventBus, error) {
	switch cfg.Type {
	case "channel":
		return NewChannelBus(cfg.ChannelBufferSize), nil

	case "nats":
		return NewNATSBus(cfg)

	default:
		return nil, fmt.Errorf("unsupported event bus type: %s", cfg.Type)
	}
}

// PublishRuleChanged announces a rule write on TopicRuleChanged.
func PublishRuleChanged(ctx context.Context, b domain.EventBus, event domain.RuleChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal rule change: %w", err)
	}
	return b.Publish(ctx, domain.TopicRuleChanged, payload)
}

func newMessage(topic string, payload []byte) *domain.Message {
	return &domain.Message{
		ID:        uuid.New().String(),
		Topic:     topic,
		Payload:   payload,
		Metadata:  make(map[string]string),
		Timestamp: time.Now().UnixNano(),
	}
}
