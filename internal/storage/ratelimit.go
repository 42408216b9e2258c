package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown gate. A single SET NX with a TTL equal to the cooldown
// window records the admission; while the key lives, further orders
// are rejected with the remaining TTL. Admission is recorded before
// payment or allocation run, so a failed purchase still consumes the
// window.
var admitOrderScript = redis.NewScript(`
if redis.call("SET", KEYS[1], ARGV[2], "NX", "PX", ARGV[1]) then
  return {1, 0}
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {0, ttl}
`)

func cooldownKey(actor string) string {
	return "cooldown:" + actor
}

func (r *RedisStorage) AdmitOrder(ctx context.Context, actor string, cooldown time.Duration) (bool, time.Duration, error) {
	windowMs := cooldown.Milliseconds()
	if windowMs <= 0 {
		return true, 0, nil
	}

	raw, err := admitOrderScript.Run(ctx, r.client,
		[]string{cooldownKey(actor)},
		windowMs, time.Now().UnixMilli(),
	).Result()
	if err != nil {
		return false, 0, fmt.Errorf("cooldown check failed: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected cooldown script response shape: %T", raw)
	}

	admitted, ok := values[0].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected cooldown script flag type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected cooldown script ttl type: %T", values[1])
	}

	if admitted == 1 {
		return true, 0, nil
	}
	return false, time.Duration(ttlMs) * time.Millisecond, nil
}
