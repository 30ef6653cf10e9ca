// Package worker keeps cached rule lookups consistent with admin writes.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/airpass/airpass/internal/domain"
	json "github.com/goccy/go-json"
)

// Invalidator drops cached lookups for an airline.
type Invalidator interface {
	InvalidateAirline(ctx context.Context, airline string) (int, error)
}

// Worker consumes rule-change events from the EventBus and invalidates caches.
type Worker struct {
	bus         domain.EventBus
	invalidator Invalidator

	mu            sync.Mutex
	subscriptions []domain.Subscription
	ctx           context.Context
	cancel        context.CancelFunc

	processed   atomic.Int64
	failed      atomic.Int64
	invalidated atomic.Int64
}

// NewWorker creates a new cache invalidation worker.
func NewWorker(bus domain.EventBus, invalidator Invalidator) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:         bus,
		invalidator: invalidator,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start subscribes to rule-change events.
func (w *Worker) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicRuleChanged, w.handleRuleChanged)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", domain.TopicRuleChanged, err)
	}

	w.mu.Lock()
	w.subscriptions = append(w.subscriptions, sub)
	w.mu.Unlock()

	slog.Info("invalidation worker started",
		"topic", domain.TopicRuleChanged,
	)
	return nil
}

// handleRuleChanged invalidates every cached lookup for the event's airline.
func (w *Worker) handleRuleChanged(ctx context.Context, msg *domain.Message) error {
	start := time.Now()

	var event domain.RuleChangedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		w.failed.Add(1)
		slog.Error("failed to parse rule change",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	if event.AirlineCode == "" {
		w.failed.Add(1)
		return fmt.Errorf("rule change %s carries no airline code", msg.ID)
	}

	removed, err := w.invalidator.InvalidateAirline(ctx, event.AirlineCode)
	if err != nil {
		w.failed.Add(1)
		slog.Error("cache invalidation failed",
			"airline_code", event.AirlineCode,
			"rule_id", event.RuleID,
			"error", err,
		)
		return err
	}

	w.processed.Add(1)
	w.invalidated.Add(int64(removed))

	slog.Info("rule change processed",
		"rule_id", event.RuleID,
		"airline_code", event.AirlineCode,
		"action", event.Action,
		"invalidated", removed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() error {
	w.cancel()

	w.mu.Lock()
	defer w.mu.Unlock()

	// Unsubscribe all
	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	slog.Info("invalidation worker stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
	Processed         int64    `json:"processed"`
	Failed            int64    `json:"failed"`
	Invalidated       int64    `json:"invalidated"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()

	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
		Processed:         w.processed.Load(),
		Failed:            w.failed.Load(),
		Invalidated:       w.invalidated.Load(),
	}
}
