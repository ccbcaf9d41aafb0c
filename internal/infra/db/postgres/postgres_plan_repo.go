package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"streaming-payments/internal/domain"
	"streaming-payments/internal/domain/model"
	"streaming-payments/internal/domain/ports/repository"
)

// Ensure interface compliance
var _ repository.PlanRepository = (*PostgresPlanRepo)(nil)

type PostgresPlanRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPlanRepo(pool *pgxpool.Pool) *PostgresPlanRepo {
	return &PostgresPlanRepo{pool: pool}
}

func (r *PostgresPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.Plan) error {
	const q = `
INSERT INTO plans (id, label, audience, price, days, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
  SET label    = EXCLUDED.label,
      audience = EXCLUDED.audience,
      price    = EXCLUDED.price,
      days     = EXCLUDED.days;
`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Label, p.Audience, p.Price, p.Days, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

func (r *PostgresPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Plan, error) {
	const q = `
SELECT id, label, audience, price, days, created_at
  FROM plans
 WHERE id = $1;
`
	row := pickRow(ctx, r.pool, tx, q, id)
	var p model.Plan
	if err := row.Scan(&p.ID, &p.Label, &p.Audience, &p.Price, &p.Days, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return &p, nil
}

func (r *PostgresPlanRepo) ListByAudience(ctx context.Context, tx repository.Tx, audience model.PlanAudience) ([]*model.Plan, error) {
	const q = `
SELECT id, label, audience, price, days, created_at
  FROM plans
 WHERE audience = $1
 ORDER BY price;
`
	rows, err := pickRows(ctx, r.pool, tx, q, audience)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	return collectPlans(rows)
}

func (r *PostgresPlanRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Plan, error) {
	const q = `
SELECT id, label, audience, price, days, created_at
  FROM plans
 ORDER BY audience, price;
`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	return collectPlans(rows)
}

func collectPlans(rows pgx.Rows) ([]*model.Plan, error) {
	var out []*model.Plan
	for rows.Next() {
		var p model.Plan
		if err := rows.Scan(&p.ID, &p.Label, &p.Audience, &p.Price, &p.Days, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
