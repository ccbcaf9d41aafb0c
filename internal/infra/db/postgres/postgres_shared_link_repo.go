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

var _ repository.SharedLinkRepository = (*PostgresSharedLinkRepo)(nil)

type PostgresSharedLinkRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresSharedLinkRepo(pool *pgxpool.Pool) *PostgresSharedLinkRepo {
	return &PostgresSharedLinkRepo{pool: pool}
}

const linkColumns = `id, agent_id, share_code, content_type, content_id, content_title, price, views, earnings, active, created_at`

func (r *PostgresSharedLinkRepo) Save(ctx context.Context, tx repository.Tx, l *model.SharedLink) error {
	const q = `
INSERT INTO shared_links (id, agent_id, share_code, content_type, content_id, content_title, price, views, earnings, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  content_title=$6, price=$7, active=$10;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		l.ID, l.AgentID, l.ShareCode, l.ContentType, l.ContentID, l.ContentTitle, l.Price, l.Views, l.Earnings, l.Active, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save shared link: %w", err)
	}
	return nil
}

func (r *PostgresSharedLinkRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SharedLink, error) {
	return r.scanOne(pickRow(ctx, r.pool, tx, `SELECT `+linkColumns+` FROM shared_links WHERE id=$1;`, id))
}

func (r *PostgresSharedLinkRepo) FindByShareCode(ctx context.Context, tx repository.Tx, code string) (*model.SharedLink, error) {
	return r.scanOne(pickRow(ctx, r.pool, tx, `SELECT `+linkColumns+` FROM shared_links WHERE share_code=$1;`, code))
}

func (r *PostgresSharedLinkRepo) ListByAgent(ctx context.Context, tx repository.Tx, agentID string) ([]*model.SharedLink, error) {
	const q = `SELECT ` + linkColumns + ` FROM shared_links WHERE agent_id=$1 ORDER BY created_at DESC;`
	rows, err := pickRows(ctx, r.pool, tx, q, agentID)
	if err != nil {
		return nil, fmt.Errorf("list shared links: %w", err)
	}
	defer rows.Close()
	var out []*model.SharedLink
	for rows.Next() {
		var l model.SharedLink
		if err := rows.Scan(&l.ID, &l.AgentID, &l.ShareCode, &l.ContentType, &l.ContentID, &l.ContentTitle, &l.Price, &l.Views, &l.Earnings, &l.Active, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// RecordPurchase bumps views and earnings in one statement so concurrent
// purchases of the same link stay additive.
func (r *PostgresSharedLinkRepo) RecordPurchase(ctx context.Context, tx repository.Tx, id string, price int64) error {
	const q = `
UPDATE shared_links SET views = views + 1, earnings = earnings + $2 WHERE id=$1;`
	ct, err := execSQL(ctx, r.pool, tx, q, id, price)
	if err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresSharedLinkRepo) SetActive(ctx context.Context, tx repository.Tx, id string, active bool) error {
	ct, err := execSQL(ctx, r.pool, tx, `UPDATE shared_links SET active=$2 WHERE id=$1;`, id, active)
	if err != nil {
		return fmt.Errorf("set link active: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresSharedLinkRepo) scanOne(row pgx.Row) (*model.SharedLink, error) {
	var l model.SharedLink
	if err := row.Scan(&l.ID, &l.AgentID, &l.ShareCode, &l.ContentType, &l.ContentID, &l.ContentTitle, &l.Price, &l.Views, &l.Earnings, &l.Active, &l.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}
