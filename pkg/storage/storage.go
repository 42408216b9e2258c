package storage

import (
	"context"
	"time"

	"github.com/redvale-rp/deaddrop/pkg/drop"
	"github.com/redvale-rp/deaddrop/pkg/market"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the storage connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the storage connection
	Close() error
}

// Storage defines a unified interface for all storage operations.
// It combines the per-actor drop registry and order cooldown gate
// (Redis-backed) with market configuration loading (filesystem).
type Storage interface {
	HealthChecker
	Closer

	// Drop registry. An actor has at most one drop; SaveDrop
	// overwrites any existing entry. LoadDrop returns nil when the
	// actor has no drop.
	SaveDrop(ctx context.Context, actor string, d *drop.Drop) error
	LoadDrop(ctx context.Context, actor string) (*drop.Drop, error)
	DeleteDrop(ctx context.Context, actor string) error

	// AdmitOrder is the cooldown gate. It admits when the actor has
	// no live cooldown window and unconditionally arms a new window
	// on admission, even though the order may still fail downstream.
	// When rejected, remaining is the time left in the window.
	AdmitOrder(ctx context.Context, actor string, cooldown time.Duration) (admitted bool, remaining time.Duration, err error)

	// Actor position, fed by the host and read by expiry checks.
	// LoadPosition returns nil when no recent position is known.
	SavePosition(ctx context.Context, actor string, pos market.Vec3) error
	LoadPosition(ctx context.Context, actor string) (*market.Vec3, error)

	// WithActorLock runs fn while holding the actor's mutation lock.
	// Order processing, unlocks and scheduled drop jobs all run under
	// this lock, so drop state changes for one actor never race.
	WithActorLock(ctx context.Context, actor string, fn func() error) error

	// Market configuration (filesystem-backed).
	GetMarket(ctx context.Context, filename string) (*market.Market, error)
}
