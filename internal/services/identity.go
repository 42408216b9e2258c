package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Identity resolves a transient actor handle (session id, server
// slot) to a stable identifier used in audit records and logs.
type Identity interface {
	Resolve(ctx context.Context, handle string) (string, error)
}

// RedisIdentity mints a uuid for each handle on first sight and
// remembers it.
type RedisIdentity struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Identity = (*RedisIdentity)(nil)

func NewRedisIdentity(client *redis.Client, logger *slog.Logger) *RedisIdentity {
	return &RedisIdentity{client: client, logger: logger}
}

func identityKey(handle string) string {
	return "identity:" + handle
}

func (s *RedisIdentity) Resolve(ctx context.Context, handle string) (string, error) {
	key := identityKey(handle)

	// SETNX then GET: first caller mints, everyone reads the winner.
	minted := uuid.New().String()
	if err := s.client.SetNX(ctx, key, minted, 0).Err(); err != nil {
		return "", fmt.Errorf("failed to mint identity: %w", err)
	}

	id, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to resolve identity: %w", err)
	}
	return id, nil
}
