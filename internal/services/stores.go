package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/referearn/backend/internal/models"
)

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AccountStore is the account repository interface used by the ledger services.
type AccountStore interface {
	CreateIfAbsent(ctx context.Context, tx pgx.Tx, a *models.Account) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByReferralCode(ctx context.Context, tx pgx.Tx, code string) (*models.Account, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	AddPoints(ctx context.Context, tx pgx.Tx, id string, amount int64) (int64, error)
	DeductPoints(ctx context.Context, tx pgx.Tx, id string, amount int64) (int64, error)
	AddCompletedTask(ctx context.Context, tx pgx.Tx, accountID, taskID string) (bool, error)
	ListCompletedTaskIDs(ctx context.Context, accountID string) ([]string, error)
}

type TaskStore interface {
	Upsert(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	Put(ctx context.Context, s *models.Settings) error
}

type WithdrawalStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, w *models.WithdrawalRequest) error
	ListByAccountID(ctx context.Context, accountID string) ([]*models.WithdrawalRequest, error)
}

// PointsStore appends to and reads the points ledger.
type PointsStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, e *models.PointsEntry) error
	ListByAccountID(ctx context.Context, accountID string) ([]*models.PointsEntry, error)
}

// Notifier delivers a chat message to an account. Delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, chatID, text string) error
}

// Stores groups the repositories shared by the ledger services.
type Stores struct {
	Pool        TxBeginner
	Accounts    AccountStore
	Tasks       TaskStore
	Settings    SettingsStore
	Withdrawals WithdrawalStore
	Points      PointsStore
}

// inTx runs fn inside a transaction and commits when it returns nil.
func (s Stores) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
