package repository

import (
	"context"

	"streaming-payments/internal/domain/model"
)

type SharedLinkRepository interface {
	Save(ctx context.Context, tx Tx, l *model.SharedLink) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.SharedLink, error)
	FindByShareCode(ctx context.Context, tx Tx, code string) (*model.SharedLink, error)
	ListByAgent(ctx context.Context, tx Tx, agentID string) ([]*model.SharedLink, error)
	// RecordPurchase bumps views by one and earnings by price in a single
	// UPDATE; document-level atomicity is the concurrency contract here.
	RecordPurchase(ctx context.Context, tx Tx, id string, price int64) error
	SetActive(ctx context.Context, tx Tx, id string, active bool) error
}
