package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// AuditEvent is a structured record of an order, payment or delivery
// for external logging.
type AuditEvent struct {
	Type    string                 `json:"type"` // e.g. "order.completed", "payment.failed"
	Actor   string                 `json:"actor"`
	ActorID string                 `json:"actor_id,omitempty"` // stable identity, when resolved
	Details map[string]interface{} `json:"details,omitempty"`
	At      time.Time              `json:"at"`
}

// AuditSink accepts audit events fire-and-forget. Recording never
// blocks the caller and sink failures never roll back the transaction
// they describe.
type AuditSink interface {
	Record(event AuditEvent)
}

const auditStream = "audit:market"

// RedisAuditSink appends events to a capped Redis stream.
type RedisAuditSink struct {
	client *redis.Client
	logger *slog.Logger
}

var _ AuditSink = (*RedisAuditSink)(nil)

func NewRedisAuditSink(client *redis.Client, logger *slog.Logger) *RedisAuditSink {
	return &RedisAuditSink{client: client, logger: logger}
}

func (s *RedisAuditSink) Record(event AuditEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	// Write in the background so slow audit storage can't stall an
	// order. Errors are logged and swallowed.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		details, err := json.Marshal(event.Details)
		if err != nil {
			s.logger.Error("Failed to marshal audit details", "type", event.Type, "error", err)
			details = []byte("{}")
		}

		err = s.client.XAdd(ctx, &redis.XAddArgs{
			Stream: auditStream,
			MaxLen: 10000,
			Approx: true,
			Values: map[string]interface{}{
				"type":     event.Type,
				"actor":    event.Actor,
				"actor_id": event.ActorID,
				"details":  string(details),
				"at":       event.At.Format(time.RFC3339Nano),
			},
		}).Err()
		if err != nil {
			s.logger.Error("Failed to record audit event", "type", event.Type, "actor", event.Actor, "error", err)
		}
	}()
}
