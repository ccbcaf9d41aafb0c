package model

import "time"

type TransactionKind string

const (
	TransactionKindSubscription TransactionKind = "subscription"
	TransactionKindWithdrawal   TransactionKind = "withdrawal"
	TransactionKindAgentShare   TransactionKind = "agent-share"
	TransactionKindDeposit      TransactionKind = "deposit"
)

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// TransactionRecord is an append-only ledger entry. Every deposit attempt,
// success or failure, produces exactly one record; records are never mutated
// after creation.
type TransactionRecord struct {
	ID        string // ULID; lexicographic order is creation order
	UserRef   string // owning entity id; empty for anonymous payers
	Name      string
	Phone     string
	Kind      TransactionKind
	Amount    int64
	Status    TransactionStatus
	Method    string // provider/channel label, e.g. "Mobile Money (Livra)"
	Reference string // provider internal_reference when known
	CreatedAt time.Time
}
