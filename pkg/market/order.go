package market

import (
	"fmt"
	"time"
)

// OrderLine is one requested item. Quantity defaults to 1 when omitted.
type OrderLine struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity,omitempty"`
}

// RejectReason classifies why an order was refused. Rejected orders
// never debit a balance and never create a drop.
type RejectReason string

const (
	RejectRateLimited   RejectReason = "rate_limited"
	RejectInvalidItem   RejectReason = "invalid_item"
	RejectInvalidOrder  RejectReason = "invalid_order"
	RejectPaymentFailed RejectReason = "payment_failed"
)

// Rejection is the error returned for any non-completed order.
type Rejection struct {
	Reason  RejectReason
	Payment PaymentFailure // set when Reason is RejectPaymentFailed
	Retry   time.Duration  // set when Reason is RejectRateLimited
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case RejectRateLimited:
		return fmt.Sprintf("order rejected: rate limited, retry in %s", r.Retry.Round(time.Second))
	case RejectPaymentFailed:
		return fmt.Sprintf("order rejected: payment failed (%s)", r.Payment)
	default:
		return fmt.Sprintf("order rejected: %s", r.Reason)
	}
}

// Receipt summarizes an accepted order: what was charged and what the
// drop will deliver. The lock code itself travels on the event stream,
// not in the receipt.
type Receipt struct {
	Actor    string        `json:"actor"`
	Items    []string      `json:"items"` // accepted manifest, duplicates preserved
	Total    int           `json:"total"`
	Method   PaymentMethod `json:"method"`
	PlacedAt time.Time     `json:"placed_at"`
}
