package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/redvale-rp/deaddrop/pkg/market"
)

// Actor positions are transient: the host reports them continuously
// while the player is online, so a short TTL is enough. A missing
// position means the actor is gone (or the host stopped reporting),
// and expiry checks treat that as out of range.
const positionTTL = 5 * time.Minute

func positionKey(actor string) string {
	return "position:" + actor
}

func (r *RedisStorage) SavePosition(ctx context.Context, actor string, pos market.Vec3) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("failed to marshal position: %w", err)
	}
	if err := r.client.Set(ctx, positionKey(actor), string(data), positionTTL).Err(); err != nil {
		r.logger.Error("Failed to save position", "actor", actor, "error", err)
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadPosition(ctx context.Context, actor string) (*market.Vec3, error) {
	cmd := r.client.Get(ctx, positionKey(actor))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load position: %w", err)
	}

	var pos market.Vec3
	if err := json.Unmarshal([]byte(cmd.Val()), &pos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal position: %w", err)
	}
	return &pos, nil
}
