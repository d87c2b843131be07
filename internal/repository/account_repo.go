package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/referearn/backend/internal/models"
)

const referralCodeConstraint = "accounts_referral_code_key"

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// CreateIfAbsent inserts the account unless one with the same id exists.
// Returns false without error when the id is already taken. A referral code
// collision surfaces as a unique violation; see IsReferralCodeConflict.
func (r *AccountRepo) CreateIfAbsent(ctx context.Context, tx pgx.Tx, a *models.Account) (bool, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO accounts (id, display_name, avatar_ref, contact, referral_code, balance, referred_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at, updated_at
	`, a.ID, a.DisplayName, a.AvatarRef, a.Contact, a.ReferralCode, a.Balance, a.ReferredBy).Scan(&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID returns the account row without its owned collections.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, display_name, avatar_ref, contact, referral_code, balance, referred_by, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.DisplayName, &a.AvatarRef, &a.Contact, &a.ReferralCode, &a.Balance, &a.ReferredBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByReferralCode resolves a referral code to its owning account inside tx.
func (r *AccountRepo) GetByReferralCode(ctx context.Context, tx pgx.Tx, code string) (*models.Account, error) {
	var a models.Account
	err := tx.QueryRow(ctx, `
		SELECT id, display_name, avatar_ref, contact, referral_code, balance, referred_by, created_at, updated_at
		FROM accounts WHERE referral_code = $1
	`, code).Scan(&a.ID, &a.DisplayName, &a.AvatarRef, &a.Contact, &a.ReferralCode, &a.Balance, &a.ReferredBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE referral_code = $1)`, code).Scan(&exists)
	return exists, err
}

// AddPoints atomically increments the balance and returns the new value.
// Returns pgx.ErrNoRows when the account does not exist.
func (r *AccountRepo) AddPoints(ctx context.Context, tx pgx.Tx, id string, amount int64) (newBalance int64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET balance = balance + $1, updated_at = now()
		WHERE id = $2
		RETURNING balance
	`, amount, id).Scan(&newBalance)
	return newBalance, err
}

// DeductPoints atomically deducts amount if balance >= amount. Returns
// pgx.ErrNoRows when the account is missing or the balance is too low.
func (r *AccountRepo) DeductPoints(ctx context.Context, tx pgx.Tx, id string, amount int64) (newBalance int64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET balance = balance - $1, updated_at = now()
		WHERE id = $2 AND balance >= $1
		RETURNING balance
	`, amount, id).Scan(&newBalance)
	return newBalance, err
}

// AddCompletedTask records taskID as completed for the account. Returns
// false when the pair already exists; the primary key makes concurrent
// duplicates wait on each other and all but one insert nothing.
func (r *AccountRepo) AddCompletedTask(ctx context.Context, tx pgx.Tx, accountID, taskID string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO completed_tasks (account_id, task_id)
		VALUES ($1, $2)
		ON CONFLICT (account_id, task_id) DO NOTHING
	`, accountID, taskID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AccountRepo) ListCompletedTaskIDs(ctx context.Context, accountID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT task_id FROM completed_tasks WHERE account_id = $1 ORDER BY completed_at, task_id
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		list = append(list, id)
	}
	return list, rows.Err()
}

// IsReferralCodeConflict reports whether err is a unique violation on the
// referral code column.
func IsReferralCodeConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == referralCodeConstraint
}
