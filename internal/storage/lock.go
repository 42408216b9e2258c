package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	actorLockTTL   = 30 * time.Second
	lockRetryDelay = 25 * time.Millisecond
)

// releaseLockScript deletes the lock only if we still own it.
var releaseLockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end
`)

func actorLockKey(actor string) string {
	return fmt.Sprintf("actor-lock:%s", actor)
}

// WithActorLock serializes drop mutations per actor across API
// handlers and scheduler workers. The lock is a SETNX with a TTL so a
// crashed holder can't wedge the actor forever; release is
// owner-checked.
func (r *RedisStorage) WithActorLock(ctx context.Context, actor string, fn func() error) error {
	lockKey := actorLockKey(actor)
	owner := uuid.New().String()

	for {
		acquired, err := r.client.SetNX(ctx, lockKey, owner, actorLockTTL).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire actor lock: %w", err)
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled waiting for actor lock: %w", ctx.Err())
		case <-time.After(lockRetryDelay):
		}
	}

	defer func() {
		// Release even when the caller's context is already cancelled;
		// the TTL is only a crash backstop.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseLockScript.Run(releaseCtx, r.client, []string{lockKey}, owner).Err(); err != nil {
			r.logger.Error("Failed to release actor lock", "actor", actor, "error", err)
		}
	}()

	return fn()
}
