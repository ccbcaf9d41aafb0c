package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidExecContext  = errors.New("invalid query execution context")
	ErrOperationFailed     = errors.New("operation failed")
	ErrReadDatabaseRow     = errors.New("failed to read database row")
	ErrAgentBlocked        = errors.New("agent account is blocked")
	ErrAgentExpired        = errors.New("agent subscription has expired")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrLinkInactive        = errors.New("shared link is no longer active")
	ErrCheckoutInFlight    = errors.New("another payment is already in progress for this phone")
)

// GatewayError is returned when the payment provider rejects a request or
// replies without a reference identifier. Message carries the provider text
// verbatim so it can be surfaced to the payer.
type GatewayError struct {
	Op      string // "deposit" | "withdraw" | "status"
	Message string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("payment gateway %s failed", e.Op)
	}
	return fmt.Sprintf("payment gateway %s failed: %s", e.Op, e.Message)
}

// PollFailedError is returned when the provider reports a terminal
// failed/expired state for a payment.
type PollFailedError struct {
	Reference string
	Message   string
}

func (e *PollFailedError) Error() string {
	if e.Message == "" {
		return "Payment failed"
	}
	return e.Message
}

// PollTimeoutError is returned when the attempt budget is exhausted while the
// payment is still non-terminal. It is distinct from PollFailedError so the
// caller can offer a different retry path.
type PollTimeoutError struct {
	Reference string
	Attempts  int
}

func (e *PollTimeoutError) Error() string {
	return "Payment timed out. Please try again."
}

// CommitError wraps a persistence failure during an entitlement commit. This
// is the severe case: money may have been collected without access granted,
// so it must be distinguishable from an ordinary payment failure in logs.
type CommitError struct {
	Kind string // entitlement kind being committed
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("entitlement commit (%s) failed: %v", e.Kind, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
