package drop

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/redvale-rp/deaddrop/pkg/market"
)

// State tracks a drop through its lifecycle. Consumed and Expired are
// terminal; a drop in either state is removed from the registry.
type State string

const (
	StatePending  State = "pending"  // created, reveal not yet sent
	StateRevealed State = "revealed" // location and code sent, awaiting collection
	StateConsumed State = "consumed" // items delivered
	StateExpired  State = "expired"  // removed without delivery
)

// Lock codes are always four digits.
const (
	LockCodeMin = 1000
	LockCodeMax = 9999
)

// Drop is a single-use, location-bound, code-locked stash of purchased
// goods. Each actor has at most one; creating a new drop for an actor
// supersedes any prior one. The ID doubles as a generation token:
// scheduled reveal and expiry jobs carry it and re-check it before
// acting, so jobs for a superseded drop are no-ops.
type Drop struct {
	ID         uuid.UUID       `json:"id"`
	Actor      string          `json:"actor"`
	Zone       market.DropZone `json:"zone"`
	LockCode   int             `json:"lock_code"`
	Manifest   []string        `json:"manifest"` // item ids, duplicates preserved
	State      State           `json:"state"`
	CreatedAt  time.Time       `json:"created_at"`
	RevealedAt time.Time       `json:"revealed_at,omitempty"`
}

// New allocates a pending drop for an actor.
func New(actor string, manifest []string, zone market.DropZone, lockCode int) *Drop {
	return &Drop{
		ID:        uuid.New(),
		Actor:     actor,
		Zone:      zone,
		LockCode:  lockCode,
		Manifest:  manifest,
		State:     StatePending,
		CreatedAt: time.Now(),
	}
}

// NewLockCode picks a uniform four-digit code.
func NewLockCode(r *rand.Rand) int {
	return LockCodeMin + r.Intn(LockCodeMax-LockCodeMin+1)
}

// RandomZone picks a drop zone uniformly from the configured list.
// The list is validated nonempty at startup.
func RandomZone(r *rand.Rand, zones []market.DropZone) market.DropZone {
	return zones[r.Intn(len(zones))]
}

// CodeMatches reports whether a submitted code unlocks this drop.
// Comparison is exact; there is no normalization and no attempt limit.
func (d *Drop) CodeMatches(code int) bool {
	return code == d.LockCode
}
