package repository

import (
	"context"
	"time"

	"streaming-payments/internal/domain/model"
)

// TransactionRepository is the append-only ledger. There is deliberately no
// update or delete operation.
type TransactionRepository interface {
	Append(ctx context.Context, tx Tx, rec *model.TransactionRecord) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.TransactionRecord, error)
	ListByPhone(ctx context.Context, tx Tx, phone string, limit int) ([]*model.TransactionRecord, error)
	SumCompletedSince(ctx context.Context, tx Tx, kind model.TransactionKind, since time.Time) (int64, error)
}
