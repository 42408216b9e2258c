package services

import (
	"context"
	"fmt"
	"sync"
)

// MockInventory is an in-memory Inventory for testing.
type MockInventory struct {
	mu       sync.Mutex
	holdings map[string]map[string]int // actor -> item -> count
	giveErr  error
}

var _ Inventory = (*MockInventory)(nil)

func NewMockInventory() *MockInventory {
	return &MockInventory{
		holdings: make(map[string]map[string]int),
	}
}

// SetGiveError makes subsequent GiveItem calls fail
func (m *MockInventory) SetGiveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.giveErr = err
}

// Seed sets an actor's holding of an item directly
func (m *MockInventory) Seed(actor, itemID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(actor)[itemID] = count
}

func (m *MockInventory) ensure(actor string) map[string]int {
	if m.holdings[actor] == nil {
		m.holdings[actor] = make(map[string]int)
	}
	return m.holdings[actor]
}

func (m *MockInventory) GiveItem(ctx context.Context, actor string, itemID string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.giveErr != nil {
		return m.giveErr
	}
	if count <= 0 {
		return fmt.Errorf("give count must be positive, got %d", count)
	}
	m.ensure(actor)[itemID] += count
	return nil
}

func (m *MockInventory) RemoveItem(ctx context.Context, actor string, itemID string, count int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if count <= 0 {
		return false, fmt.Errorf("remove count must be positive, got %d", count)
	}
	have := m.ensure(actor)[itemID]
	if have < count {
		return false, nil
	}
	if have == count {
		delete(m.holdings[actor], itemID)
	} else {
		m.holdings[actor][itemID] = have - count
	}
	return true, nil
}

func (m *MockInventory) CountItem(ctx context.Context, actor string, itemID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensure(actor)[itemID], nil
}
