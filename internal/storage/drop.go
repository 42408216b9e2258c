package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/redvale-rp/deaddrop/pkg/drop"
)

// Drop registry operations (Redis-backed). The registry is keyed by
// actor, so writing a new drop overwrites whatever drop the actor had.

func dropKey(actor string) string {
	return "drop:" + actor
}

func (r *RedisStorage) SaveDrop(ctx context.Context, actor string, d *drop.Drop) error {
	data, err := json.Marshal(d)
	if err != nil {
		r.logger.Error("Failed to marshal drop", "actor", actor, "error", err)
		return fmt.Errorf("failed to marshal drop: %w", err)
	}

	// No TTL: drops live until consumed or expired by the distance check.
	cmd := r.client.Set(ctx, dropKey(actor), string(data), 0)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save drop", "actor", actor, "error", err)
		return fmt.Errorf("failed to save drop: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadDrop(ctx context.Context, actor string) (*drop.Drop, error) {
	cmd := r.client.Get(ctx, dropKey(actor))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil // no active drop
		}
		r.logger.Error("Failed to load drop", "actor", actor, "error", err)
		return nil, fmt.Errorf("failed to load drop: %w", err)
	}

	var d drop.Drop
	if err := json.Unmarshal([]byte(cmd.Val()), &d); err != nil {
		r.logger.Error("Failed to unmarshal drop", "actor", actor, "error", err)
		return nil, fmt.Errorf("failed to unmarshal drop: %w", err)
	}

	return &d, nil
}

func (r *RedisStorage) DeleteDrop(ctx context.Context, actor string) error {
	cmd := r.client.Del(ctx, dropKey(actor))
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete drop", "actor", actor, "error", err)
		return fmt.Errorf("failed to delete drop: %w", err)
	}
	return nil
}
