package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/referearn/backend/internal/models"
)

type SettingsRepo struct {
	pool *pgxpool.Pool
}

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

// Get returns the settings singleton, or pgx.ErrNoRows if it was never written.
func (r *SettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	err := r.pool.QueryRow(ctx, `
		SELECT min_withdraw, refer_bonus, task_points, withdraw_methods, updated_at
		FROM settings WHERE id = 1
	`).Scan(&s.MinWithdraw, &s.ReferBonus, &s.TaskPoints, &s.WithdrawMethods, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Put overwrites the settings singleton.
func (r *SettingsRepo) Put(ctx context.Context, s *models.Settings) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO settings (id, min_withdraw, refer_bonus, task_points, withdraw_methods)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			min_withdraw = EXCLUDED.min_withdraw,
			refer_bonus = EXCLUDED.refer_bonus,
			task_points = EXCLUDED.task_points,
			withdraw_methods = EXCLUDED.withdraw_methods,
			updated_at = now()
		RETURNING updated_at
	`, s.MinWithdraw, s.ReferBonus, s.TaskPoints, s.WithdrawMethods).Scan(&s.UpdatedAt)
}
