package repository

import (
	"context"
	"time"

	"streaming-payments/internal/domain/model"
)

type AgentRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Agent) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Agent, error)
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Agent, error)
	FindByPhone(ctx context.Context, tx Tx, phone string) (*model.Agent, error)
	// Renew resets the plan window from now and reactivates the agent.
	Renew(ctx context.Context, tx Tx, id, plan string, planExpiry time.Time) error
	// CreditEarnings adds delta to balance and total_earnings in one UPDATE,
	// so concurrent pay-per-view credits never lose an update.
	CreditEarnings(ctx context.Context, tx Tx, id string, delta int64) error
	// DebitBalance subtracts amount from balance, failing if the remaining
	// balance would go negative.
	DebitBalance(ctx context.Context, tx Tx, id string, amount int64) error
	// MarkExpired flips active agents whose plan window passed before cutoff.
	MarkExpired(ctx context.Context, tx Tx, cutoff time.Time) (int, error)
}
