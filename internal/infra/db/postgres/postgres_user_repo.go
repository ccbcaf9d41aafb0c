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

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, phone, name, plan_label, expires_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  phone=$2, name=$3, plan_label=$4, expires_at=$5, updated_at=$7;
`
	_, err := execSQL(ctx, r.pool, tx, q, u.ID, u.Phone, u.Name, u.PlanLabel, u.ExpiresAt, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `
SELECT id, phone, name, plan_label, expires_at, created_at, updated_at
  FROM users WHERE id=$1;`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, id))
}

func (r *PostgresUserRepo) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.User, error) {
	const q = `
SELECT id, phone, name, plan_label, expires_at, created_at, updated_at
  FROM users WHERE phone=$1;`
	return r.scanOne(pickRow(ctx, r.pool, tx, q, phone))
}

func (r *PostgresUserRepo) SetSubscription(ctx context.Context, tx repository.Tx, id, planLabel string, expiresAt time.Time) error {
	const q = `
UPDATE users SET plan_label=$2, expires_at=$3, updated_at=now() WHERE id=$1;`
	ct, err := execSQL(ctx, r.pool, tx, q, id, planLabel, expiresAt)
	if err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) CountSubscribed(ctx context.Context, tx repository.Tx, at time.Time) (int, error) {
	row := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users WHERE expires_at > $1;`, at)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribed: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepo) scanOne(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Phone, &u.Name, &u.PlanLabel, &u.ExpiresAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
