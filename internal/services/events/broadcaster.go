package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/redvale-rp/deaddrop/pkg/market"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeOrderRejected    EventType = "order.rejected"
	EventTypePaymentFailed    EventType = "payment.failed"
	EventTypeLockCodeIssued   EventType = "lockcode.issued"
	EventTypeDropRevealed     EventType = "drop.revealed"
	EventTypeDropExpired      EventType = "drop.expired"
	EventTypeDeliveryComplete EventType = "delivery.complete"
)

// Event represents a generic event structure
type Event struct {
	Type  EventType              `json:"type"`
	Actor string                 `json:"actor"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution.
// Each actor has a private channel; nothing an actor receives leaks to
// other actors.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// ChannelFor returns the pub/sub channel for an actor's events.
func ChannelFor(actor string) string {
	return fmt.Sprintf("market-events:%s", actor)
}

// PublishOrderRejected publishes an order.rejected event
func (b *Broadcaster) PublishOrderRejected(ctx context.Context, actor string, reason market.RejectReason, retrySeconds int) error {
	data := map[string]interface{}{
		"reason": string(reason),
	}
	if retrySeconds > 0 {
		data["retry_seconds"] = retrySeconds
	}
	return b.publishToActor(ctx, actor, Event{
		Type:  EventTypeOrderRejected,
		Actor: actor,
		Data:  data,
	})
}

// PublishPaymentFailed publishes a payment.failed event
func (b *Broadcaster) PublishPaymentFailed(ctx context.Context, actor string, failure market.PaymentFailure, method market.PaymentMethod) error {
	return b.publishToActor(ctx, actor, Event{
		Type:  EventTypePaymentFailed,
		Actor: actor,
		Data: map[string]interface{}{
			"failure": string(failure),
			"method":  string(method),
		},
	})
}

// PublishLockCodeIssued publishes a lockcode.issued event. This is the
// purchaser's out-of-band copy of the code, sent at order acceptance.
func (b *Broadcaster) PublishLockCodeIssued(ctx context.Context, actor string, code int, expiryMinutes int) error {
	return b.publishToActor(ctx, actor, Event{
		Type:  EventTypeLockCodeIssued,
		Actor: actor,
		Data: map[string]interface{}{
			"code":           code,
			"expiry_minutes": expiryMinutes,
		},
	})
}

// PublishDropRevealed publishes a drop.revealed event with everything
// the client needs to render the stash: location, items, code, radius.
func (b *Broadcaster) PublishDropRevealed(ctx context.Context, actor string, zone market.DropZone, items []string, code int, radius float64) error {
	return b.publishToActor(ctx, actor, Event{
		Type:  EventTypeDropRevealed,
		Actor: actor,
		Data: map[string]interface{}{
			"zone":   zone,
			"items":  items,
			"code":   code,
			"radius": radius,
		},
	})
}

// PublishDropExpired publishes a drop.expired event
func (b *Broadcaster) PublishDropExpired(ctx context.Context, actor string) error {
	return b.publishToActor(ctx, actor, Event{
		Type:  EventTypeDropExpired,
		Actor: actor,
	})
}

// PublishDeliveryComplete publishes a delivery.complete event
func (b *Broadcaster) PublishDeliveryComplete(ctx context.Context, actor string, items []string) error {
	return b.publishToActor(ctx, actor, Event{
		Type:  EventTypeDeliveryComplete,
		Actor: actor,
		Data: map[string]interface{}{
			"items": items,
		},
	})
}

// publishToActor publishes an event to the actor-specific channel
func (b *Broadcaster) publishToActor(ctx context.Context, actor string, event Event) error {
	channel := ChannelFor(actor)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
