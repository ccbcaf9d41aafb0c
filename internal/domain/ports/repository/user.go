package repository

import (
	"context"
	"time"

	"streaming-payments/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByPhone(ctx context.Context, tx Tx, phone string) (*model.User, error)
	// SetSubscription writes the entitlement window on the user row.
	SetSubscription(ctx context.Context, tx Tx, id, planLabel string, expiresAt time.Time) error
	CountSubscribed(ctx context.Context, tx Tx, at time.Time) (int, error)
}
