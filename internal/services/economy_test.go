package services

import (
	"context"
	"testing"
)

func TestRedisEconomyDepositAndBalance(t *testing.T) {
	ctx := context.Background()
	eco := NewRedisEconomy(newTestRedis(t), testLogger())

	balance, err := eco.Balance(ctx, "crook", AccountCash)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 0 {
		t.Errorf("expected zero balance for new actor, got %d", balance)
	}

	if err := eco.Deposit(ctx, "crook", AccountCash, 1000); err != nil {
		t.Fatal(err)
	}
	balance, _ = eco.Balance(ctx, "crook", AccountCash)
	if balance != 1000 {
		t.Errorf("expected 1000, got %d", balance)
	}

	// Accounts are independent.
	balance, _ = eco.Balance(ctx, "crook", AccountBank)
	if balance != 0 {
		t.Errorf("cash deposit leaked into bank: %d", balance)
	}

	if err := eco.Deposit(ctx, "crook", AccountCash, -5); err == nil {
		t.Error("expected error for non-positive deposit")
	}
}

func TestRedisEconomyDebit(t *testing.T) {
	ctx := context.Background()
	eco := NewRedisEconomy(newTestRedis(t), testLogger())

	if err := eco.Deposit(ctx, "crook", AccountBank, 500); err != nil {
		t.Fatal(err)
	}

	// Insufficient balance refuses the whole debit.
	ok, err := eco.Debit(ctx, "crook", AccountBank, 501)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("overdraft allowed")
	}
	balance, _ := eco.Balance(ctx, "crook", AccountBank)
	if balance != 500 {
		t.Errorf("failed debit moved funds: %d", balance)
	}

	ok, err = eco.Debit(ctx, "crook", AccountBank, 500)
	if err != nil || !ok {
		t.Fatalf("exact debit failed: %v %v", ok, err)
	}
	balance, _ = eco.Balance(ctx, "crook", AccountBank)
	if balance != 0 {
		t.Errorf("expected zero balance, got %d", balance)
	}

	if _, err := eco.Debit(ctx, "crook", AccountBank, 0); err == nil {
		t.Error("expected error for non-positive debit")
	}
}
