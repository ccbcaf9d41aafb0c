package model

import "time"

// PaymentStatus is the normalized provider state of an in-flight deposit.
// pending/processing are non-terminal; success is terminal-positive;
// failed/expired are terminal-negative.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSuccess    PaymentStatus = "success"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusExpired    PaymentStatus = "expired"
)

// Terminal reports whether the status closes the payment.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed || s == PaymentStatusExpired
}

// PaymentRequest is the provider-side deposit request created by
// PaymentGateway.Deposit. It is never mutated; the reference is the key for
// all subsequent status lookups.
type PaymentRequest struct {
	Reference   string // provider internal_reference
	PayerPhone  string // normalized +256... form
	Amount      int64  // UGX, minor-unit-free
	Description string // shown on the payer's phone prompt
	CreatedAt   time.Time
}

// StatusCheck is the result of a single status lookup, including the raw
// provider message so terminal failures can surface it verbatim.
type StatusCheck struct {
	Status   PaymentStatus
	Message  string
	Amount   int64
	Provider string
}

// WithdrawResult is the provider acknowledgement of an outbound payout.
type WithdrawResult struct {
	Reference string
	Message   string
}
