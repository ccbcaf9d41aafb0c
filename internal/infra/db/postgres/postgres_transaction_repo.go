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

var _ repository.TransactionRepository = (*PostgresTransactionRepo)(nil)

// PostgresTransactionRepo is the ledger table. Append is a plain INSERT with
// no conflict clause: a duplicate ID is a bug worth surfacing, and nothing
// ever updates or deletes a row.
type PostgresTransactionRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresTransactionRepo(pool *pgxpool.Pool) *PostgresTransactionRepo {
	return &PostgresTransactionRepo{pool: pool}
}

const txnColumns = `id, user_ref, name, phone, kind, amount, status, method, reference, created_at`

func (r *PostgresTransactionRepo) Append(ctx context.Context, tx repository.Tx, rec *model.TransactionRecord) error {
	const q = `
INSERT INTO transactions (id, user_ref, name, phone, kind, amount, status, method, reference, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.UserRef, rec.Name, rec.Phone, rec.Kind, rec.Amount, rec.Status, rec.Method, rec.Reference, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (r *PostgresTransactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TransactionRecord, error) {
	row := pickRow(ctx, r.pool, tx, `SELECT `+txnColumns+` FROM transactions WHERE id=$1;`, id)
	var rec model.TransactionRecord
	if err := row.Scan(&rec.ID, &rec.UserRef, &rec.Name, &rec.Phone, &rec.Kind, &rec.Amount, &rec.Status, &rec.Method, &rec.Reference, &rec.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresTransactionRepo) ListByPhone(ctx context.Context, tx repository.Tx, phone string, limit int) ([]*model.TransactionRecord, error) {
	const q = `
SELECT ` + txnColumns + `
  FROM transactions
 WHERE phone = $1
 ORDER BY id DESC
 LIMIT $2;
`
	rows, err := pickRows(ctx, r.pool, tx, q, phone, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var out []*model.TransactionRecord
	for rows.Next() {
		var rec model.TransactionRecord
		if err := rows.Scan(&rec.ID, &rec.UserRef, &rec.Name, &rec.Phone, &rec.Kind, &rec.Amount, &rec.Status, &rec.Method, &rec.Reference, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *PostgresTransactionRepo) SumCompletedSince(ctx context.Context, tx repository.Tx, kind model.TransactionKind, since time.Time) (int64, error) {
	const q = `
SELECT COALESCE(SUM(amount), 0)
  FROM transactions
 WHERE kind = $1 AND status = 'completed' AND created_at >= $2;
`
	row := pickRow(ctx, r.pool, tx, q, kind, since)
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}
