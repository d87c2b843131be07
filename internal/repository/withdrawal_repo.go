package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/referearn/backend/internal/models"
)

type WithdrawalRepo struct {
	pool *pgxpool.Pool
}

func NewWithdrawalRepo(pool *pgxpool.Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

// CreateTx inserts the request inside the given transaction.
func (r *WithdrawalRepo) CreateTx(ctx context.Context, tx pgx.Tx, w *models.WithdrawalRequest) error {
	return tx.QueryRow(ctx, `
		INSERT INTO withdrawal_requests (id, account_id, amount, method, details, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, w.ID, w.AccountID, w.Amount, w.Method, w.Details, w.Status).Scan(&w.CreatedAt)
}

func (r *WithdrawalRepo) ListByAccountID(ctx context.Context, accountID string) ([]*models.WithdrawalRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, amount, method, details, status, created_at
		FROM withdrawal_requests WHERE account_id = $1 ORDER BY created_at, id
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []*models.WithdrawalRequest{}
	for rows.Next() {
		var w models.WithdrawalRequest
		if err := rows.Scan(&w.ID, &w.AccountID, &w.Amount, &w.Method, &w.Details, &w.Status, &w.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// PendingSummary returns the number of pending requests and the points they hold.
func (r *WithdrawalRepo) PendingSummary(ctx context.Context) (count int64, points int64, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(amount), 0)
		FROM withdrawal_requests WHERE status = 'Pending'
	`).Scan(&count, &points)
	return count, points, err
}
