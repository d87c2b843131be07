package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/referearn/backend/internal/metrics"
	"github.com/referearn/backend/internal/models"
)

// WithdrawalService turns points into pending payout requests.
type WithdrawalService struct {
	Stores
	Resolver *SettingsResolver
	Notifier Notifier
	Logger   *slog.Logger
}

func NewWithdrawalService(st Stores, notifier Notifier, logger *slog.Logger) *WithdrawalService {
	if logger == nil {
		logger = slog.Default()
	}
	return &WithdrawalService{
		Stores:   st,
		Resolver: NewSettingsResolver(st.Settings),
		Notifier: notifier,
		Logger:   logger,
	}
}

// WithdrawInput is a payout request as submitted by the account holder.
type WithdrawInput struct {
	AccountID string
	Amount    int64
	Method    string
	Details   string
}

// RequestWithdraw deducts the amount from the balance and records a Pending
// request. The deduction is conditional on the balance still covering the
// amount, so concurrent requests can never overdraw the account.
func (s *WithdrawalService) RequestWithdraw(ctx context.Context, in WithdrawInput) (*models.WithdrawalRequest, error) {
	req, err := s.withdraw(ctx, in)
	metrics.RecordLedgerOperation("withdraw", outcome(err))
	if err != nil {
		return nil, err
	}
	metrics.RecordPoints(models.PointsEntryWithdrawal, req.Amount)
	notifyBestEffort(ctx, s.Notifier, s.Logger, in.AccountID,
		fmt.Sprintf("💸 Withdraw request for %d points submitted! We'll process it soon.", req.Amount))
	return req, nil
}

func (s *WithdrawalService) withdraw(ctx context.Context, in WithdrawInput) (*models.WithdrawalRequest, error) {
	if in.AccountID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	settings, err := s.Resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	acc, err := s.Accounts.GetByID(ctx, in.AccountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", in.AccountID, ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if in.Amount > acc.Balance {
		return nil, fmt.Errorf("withdraw %d of %d: %w", in.Amount, acc.Balance, ErrInsufficientBalance)
	}
	if in.Amount < settings.MinWithdraw {
		return nil, fmt.Errorf("withdraw %d, minimum %d: %w", in.Amount, settings.MinWithdraw, ErrBelowMinimum)
	}
	if !settings.AllowsMethod(in.Method) {
		return nil, fmt.Errorf("method %q: %w", in.Method, ErrUnsupportedMethod)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("request id: %w", err)
	}
	req := &models.WithdrawalRequest{
		ID:        id,
		AccountID: in.AccountID,
		Amount:    in.Amount,
		Method:    in.Method,
		Details:   in.Details,
		Status:    models.WithdrawalStatusPending,
	}
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		newBalance, err := s.Accounts.DeductPoints(ctx, tx, in.AccountID, in.Amount)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("withdraw %d: %w", in.Amount, ErrInsufficientBalance)
		}
		if err != nil {
			return fmt.Errorf("deduct points: %w", err)
		}
		if err := s.Withdrawals.CreateTx(ctx, tx, req); err != nil {
			return fmt.Errorf("create withdrawal request: %w", err)
		}
		ref := req.ID.String()
		return s.Points.CreateTx(ctx, tx, &models.PointsEntry{
			ID: uuid.New(), AccountID: in.AccountID, EntryType: models.PointsEntryWithdrawal,
			Amount: in.Amount, BalanceAfter: newBalance, RefID: &ref,
		})
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}
