package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redvale-rp/deaddrop/pkg/drop"
	"github.com/redvale-rp/deaddrop/pkg/market"
)

// MockStorage is an in-memory implementation of Storage for testing.
// The clock is injectable so cooldown behavior can be tested without
// sleeping.
type MockStorage struct {
	mu        sync.RWMutex
	drops     map[string]*drop.Drop
	cooldowns map[string]time.Time // actor -> window start
	positions map[string]market.Vec3
	markets   map[string]*market.Market
	pingError error

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	// Now is the clock used for cooldown admission. Defaults to time.Now.
	Now func() time.Time
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		drops:     make(map[string]*drop.Drop),
		cooldowns: make(map[string]time.Time),
		positions: make(map[string]market.Vec3),
		markets:   make(map[string]*market.Market),
		locks:     make(map[string]*sync.Mutex),
		Now:       time.Now,
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetMarket registers a market under a filename
func (m *MockStorage) SetMarket(filename string, mk *market.Market) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markets[filename] = mk
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveDrop mocks storing a drop, overwriting any existing one
func (m *MockStorage) SaveDrop(ctx context.Context, actor string, d *drop.Drop) error {
	if d == nil {
		return errors.New("drop cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drops[actor] = d
	return nil
}

// LoadDrop mocks loading a drop. Returns nil when the actor has none.
func (m *MockStorage) LoadDrop(ctx context.Context, actor string) (*drop.Drop, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drops[actor]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

// DeleteDrop mocks removing a drop
func (m *MockStorage) DeleteDrop(ctx context.Context, actor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drops, actor)
	return nil
}

// AdmitOrder mocks the cooldown gate
func (m *MockStorage) AdmitOrder(ctx context.Context, actor string, cooldown time.Duration) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	if start, ok := m.cooldowns[actor]; ok {
		elapsed := now.Sub(start)
		if elapsed < cooldown {
			return false, cooldown - elapsed, nil
		}
	}
	m.cooldowns[actor] = now
	return true, 0, nil
}

// SavePosition mocks recording an actor position
func (m *MockStorage) SavePosition(ctx context.Context, actor string, pos market.Vec3) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[actor] = pos
	return nil
}

// LoadPosition mocks reading an actor position
func (m *MockStorage) LoadPosition(ctx context.Context, actor string) (*market.Vec3, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pos, ok := m.positions[actor]
	if !ok {
		return nil, nil
	}
	return &pos, nil
}

// WithActorLock serializes fn per actor
func (m *MockStorage) WithActorLock(ctx context.Context, actor string, fn func() error) error {
	m.lockMu.Lock()
	lock, ok := m.locks[actor]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[actor] = lock
	}
	m.lockMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// GetMarket mocks market loading
func (m *MockStorage) GetMarket(ctx context.Context, filename string) (*market.Market, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mk, ok := m.markets[filename]
	if !ok {
		return nil, errors.New("market not found: " + filename)
	}
	return mk, nil
}
