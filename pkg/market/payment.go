package market

import "fmt"

// PaymentMethod selects which balance or holding an order is charged
// against. The method is a single server-side configuration value;
// clients never choose it.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentBank       PaymentMethod = "bank"
	PaymentBlackMoney PaymentMethod = "black_money"
)

// ParsePaymentMethod validates a configured payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentBank, PaymentBlackMoney:
		return PaymentMethod(s), nil
	default:
		return "", fmt.Errorf("invalid payment method %q (supported: cash, bank, black_money)", s)
	}
}

// PaymentFailure classifies why a debit attempt was refused.
type PaymentFailure string

const (
	PaymentFailureNone                PaymentFailure = ""
	PaymentFailureInsufficientFunds   PaymentFailure = "insufficient_funds"
	PaymentFailureMissingPrecondition PaymentFailure = "missing_precondition"
)

// PaymentResult is the outcome of a single debit attempt. A failed
// result means no funds moved at all; debits are atomic per call.
type PaymentResult struct {
	OK      bool           `json:"ok"`
	Amount  int            `json:"amount"`
	Method  PaymentMethod  `json:"method"`
	Failure PaymentFailure `json:"failure,omitempty"`
}
