package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/domain/ports/repository"
)

var _ repository.AgentRepository = (*PostgresAgentRepo)(nil)

type PostgresAgentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAgentRepo(pool *pgxpool.Pool) *PostgresAgentRepo {
	return &PostgresAgentRepo{pool: pool}
}

const agentColumns = `id, code, name, phone, balance, total_earnings, plan, plan_expiry, status, created_at`

func (r *PostgresAgentRepo) Save(ctx context.Context, tx repository.Tx, a *model.Agent) error {
	const q = `
INSERT INTO agents (id, code, name, phone, balance, total_earnings, plan, plan_expiry, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  name=$3, phone=$4, plan=$7, plan_expiry=$8, status=$9;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		a.ID, a.Code, a.Name, a.Phone, a.Balance, a.TotalEarnings, a.Plan, a.PlanExpiry, a.Status, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save agent: %w", err)
	}
	return nil
}

func (r *PostgresAgentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Agent, error) {
	return r.scanOne(pickRow(ctx, r.pool, tx, `SELECT `+agentColumns+` FROM agents WHERE id=$1;`, id))
}

func (r *PostgresAgentRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Agent, error) {
	return r.scanOne(pickRow(ctx, r.pool, tx, `SELECT `+agentColumns+` FROM agents WHERE code=$1;`, code))
}

func (r *PostgresAgentRepo) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.Agent, error) {
	return r.scanOne(pickRow(ctx, r.pool, tx, `SELECT `+agentColumns+` FROM agents WHERE phone=$1;`, phone))
}

func (r *PostgresAgentRepo) Renew(ctx context.Context, tx repository.Tx, id, plan string, planExpiry time.Time) error {
	const q = `
UPDATE agents SET plan=$2, plan_expiry=$3, status='active' WHERE id=$1;`
	ct, err := execSQL(ctx, r.pool, tx, q, id, plan, planExpiry)
	if err != nil {
		return fmt.Errorf("renew agent: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreditEarnings bumps balance and total_earnings in one statement; the row
// lock makes concurrent credits additive.
func (r *PostgresAgentRepo) CreditEarnings(ctx context.Context, tx repository.Tx, id string, delta int64) error {
	const q = `
UPDATE agents SET balance = balance + $2, total_earnings = total_earnings + $2 WHERE id=$1;`
	ct, err := execSQL(ctx, r.pool, tx, q, id, delta)
	if err != nil {
		return fmt.Errorf("credit earnings: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DebitBalance refuses to let the balance go negative; the balance guard is
// part of the WHERE clause so a concurrent withdrawal cannot overdraw.
func (r *PostgresAgentRepo) DebitBalance(ctx context.Context, tx repository.Tx, id string, amount int64) error {
	const q = `
UPDATE agents SET balance = balance - $2 WHERE id=$1 AND balance >= $2;`
	ct, err := execSQL(ctx, r.pool, tx, q, id, amount)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *PostgresAgentRepo) MarkExpired(ctx context.Context, tx repository.Tx, cutoff time.Time) (int, error) {
	const q = `
UPDATE agents SET status='expired' WHERE status='active' AND plan_expiry < $1;`
	ct, err := execSQL(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("mark expired: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

func (r *PostgresAgentRepo) scanOne(row pgx.Row) (*model.Agent, error) {
	var a model.Agent
	if err := row.Scan(&a.ID, &a.Code, &a.Name, &a.Phone, &a.Balance, &a.TotalEarnings, &a.Plan, &a.PlanExpiry, &a.Status, &a.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
