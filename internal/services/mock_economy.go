package services

import (
	"context"
	"fmt"
	"sync"
)

// MockEconomy is an in-memory Economy for testing.
type MockEconomy struct {
	mu       sync.Mutex
	balances map[string]map[Account]int
	debitErr error
}

var _ Economy = (*MockEconomy)(nil)

func NewMockEconomy() *MockEconomy {
	return &MockEconomy{
		balances: make(map[string]map[Account]int),
	}
}

// SetDebitError makes subsequent Debit calls fail
func (m *MockEconomy) SetDebitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debitErr = err
}

func (m *MockEconomy) ensure(actor string) map[Account]int {
	if m.balances[actor] == nil {
		m.balances[actor] = make(map[Account]int)
	}
	return m.balances[actor]
}

func (m *MockEconomy) Debit(ctx context.Context, actor string, account Account, amount int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.debitErr != nil {
		return false, m.debitErr
	}
	if amount <= 0 {
		return false, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	if m.ensure(actor)[account] < amount {
		return false, nil
	}
	m.balances[actor][account] -= amount
	return true, nil
}

func (m *MockEconomy) Deposit(ctx context.Context, actor string, account Account, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive, got %d", amount)
	}
	m.ensure(actor)[account] += amount
	return nil
}

func (m *MockEconomy) Balance(ctx context.Context, actor string, account Account) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensure(actor)[account], nil
}
