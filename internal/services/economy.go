package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Account selects which balance a debit runs against.
type Account string

const (
	AccountCash Account = "cash"
	AccountBank Account = "bank"
)

// Economy is the balance backend. Debits are atomic: either the full
// amount moves or nothing does.
type Economy interface {
	// Debit removes amount from the actor's account. Returns false
	// without debiting when the balance is insufficient.
	Debit(ctx context.Context, actor string, account Account, amount int) (bool, error)

	// Deposit adds amount to the actor's account.
	Deposit(ctx context.Context, actor string, account Account, amount int) error

	// Balance returns the actor's current balance for an account.
	Balance(ctx context.Context, actor string, account Account) (int, error)
}

// RedisEconomy stores cash and bank balances in one hash per actor.
type RedisEconomy struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Economy = (*RedisEconomy)(nil)

func NewRedisEconomy(client *redis.Client, logger *slog.Logger) *RedisEconomy {
	return &RedisEconomy{client: client, logger: logger}
}

func balanceKey(actor string) string {
	return "balance:" + actor
}

var debitScript = redis.NewScript(`
local have = tonumber(redis.call("HGET", KEYS[1], ARGV[1]) or "0")
local want = tonumber(ARGV[2])
if have < want then
  return 0
end
redis.call("HINCRBY", KEYS[1], ARGV[1], -want)
return 1
`)

func (e *RedisEconomy) Debit(ctx context.Context, actor string, account Account, amount int) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	res, err := debitScript.Run(ctx, e.client, []string{balanceKey(actor)}, string(account), amount).Int()
	if err != nil {
		e.logger.Error("Failed to debit balance", "actor", actor, "account", account, "error", err)
		return false, fmt.Errorf("failed to debit balance: %w", err)
	}
	return res == 1, nil
}

func (e *RedisEconomy) Deposit(ctx context.Context, actor string, account Account, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive, got %d", amount)
	}
	if err := e.client.HIncrBy(ctx, balanceKey(actor), string(account), int64(amount)).Err(); err != nil {
		e.logger.Error("Failed to deposit", "actor", actor, "account", account, "error", err)
		return fmt.Errorf("failed to deposit: %w", err)
	}
	return nil
}

func (e *RedisEconomy) Balance(ctx context.Context, actor string, account Account) (int, error) {
	val, err := e.client.HGet(ctx, balanceKey(actor), string(account)).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return val, nil
}
