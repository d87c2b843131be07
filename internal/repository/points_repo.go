package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/referearn/backend/internal/models"
)

type PointsRepo struct {
	pool *pgxpool.Pool
}

func NewPointsRepo(pool *pgxpool.Pool) *PointsRepo {
	return &PointsRepo{pool: pool}
}

// CreateTx inserts a ledger entry inside the given transaction.
func (r *PointsRepo) CreateTx(ctx context.Context, tx pgx.Tx, e *models.PointsEntry) error {
	return tx.QueryRow(ctx, `
		INSERT INTO points_ledger (id, account_id, entry_type, amount, balance_after, ref_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, e.ID, e.AccountID, e.EntryType, e.Amount, e.BalanceAfter, e.RefID).Scan(&e.CreatedAt)
}

func (r *PointsRepo) ListByAccountID(ctx context.Context, accountID string) ([]*models.PointsEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, entry_type, amount, balance_after, ref_id, created_at
		FROM points_ledger WHERE account_id = $1 ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.PointsEntry
	for rows.Next() {
		var e models.PointsEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.EntryType, &e.Amount, &e.BalanceAfter, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
