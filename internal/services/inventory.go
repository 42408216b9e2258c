package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Inventory is the item backend the vendor engine delivers into and
// removes consumable currency from. In the sidecar deployment it is
// Redis-backed; the game host syncs it with its own inventory system.
type Inventory interface {
	// GiveItem adds count of an item to the actor's holdings.
	GiveItem(ctx context.Context, actor string, itemID string, count int) error

	// RemoveItem removes count of an item. Returns false without
	// removing anything when the actor holds fewer than count.
	RemoveItem(ctx context.Context, actor string, itemID string, count int) (bool, error)

	// CountItem returns how many of an item the actor holds.
	CountItem(ctx context.Context, actor string, itemID string) (int, error)
}

// RedisInventory stores holdings in one hash per actor.
type RedisInventory struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Inventory = (*RedisInventory)(nil)

func NewRedisInventory(client *redis.Client, logger *slog.Logger) *RedisInventory {
	return &RedisInventory{client: client, logger: logger}
}

func inventoryKey(actor string) string {
	return "inventory:" + actor
}

// Remove is refused entirely when the actor holds fewer than the
// requested count; a partial removal would break payment atomicity.
var removeItemScript = redis.NewScript(`
local have = tonumber(redis.call("HGET", KEYS[1], ARGV[1]) or "0")
local want = tonumber(ARGV[2])
if have < want then
  return 0
end
local left = redis.call("HINCRBY", KEYS[1], ARGV[1], -want)
if left <= 0 then
  redis.call("HDEL", KEYS[1], ARGV[1])
end
return 1
`)

func (i *RedisInventory) GiveItem(ctx context.Context, actor string, itemID string, count int) error {
	if count <= 0 {
		return fmt.Errorf("give count must be positive, got %d", count)
	}
	if err := i.client.HIncrBy(ctx, inventoryKey(actor), itemID, int64(count)).Err(); err != nil {
		i.logger.Error("Failed to give item", "actor", actor, "item", itemID, "error", err)
		return fmt.Errorf("failed to give item: %w", err)
	}
	return nil
}

func (i *RedisInventory) RemoveItem(ctx context.Context, actor string, itemID string, count int) (bool, error) {
	if count <= 0 {
		return false, fmt.Errorf("remove count must be positive, got %d", count)
	}
	res, err := removeItemScript.Run(ctx, i.client, []string{inventoryKey(actor)}, itemID, count).Int()
	if err != nil {
		i.logger.Error("Failed to remove item", "actor", actor, "item", itemID, "error", err)
		return false, fmt.Errorf("failed to remove item: %w", err)
	}
	return res == 1, nil
}

func (i *RedisInventory) CountItem(ctx context.Context, actor string, itemID string) (int, error) {
	val, err := i.client.HGet(ctx, inventoryKey(actor), itemID).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count item: %w", err)
	}
	return val, nil
}
