package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/referearn/backend/internal/metrics"
	"github.com/referearn/backend/internal/models"
	"github.com/referearn/backend/internal/repository"
)

// errCodeSpaceExhausted is returned when every generated referral code in a
// registration attempt collided with an existing one.
var errCodeSpaceExhausted = errors.New("could not allocate a unique referral code")

// AccountService owns account creation and the referral graph.
type AccountService struct {
	Stores
	Resolver *SettingsResolver
	Notifier Notifier
	Logger   *slog.Logger
}

func NewAccountService(st Stores, notifier Notifier, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		Stores:   st,
		Resolver: NewSettingsResolver(st.Settings),
		Notifier: notifier,
		Logger:   logger,
	}
}

// Register creates an account with a zero balance and returns its referral code.
func (s *AccountService) Register(ctx context.Context, id string, p models.Profile) (string, error) {
	code, err := s.register(ctx, id, p)
	metrics.RecordLedgerOperation("register", outcome(err))
	return code, err
}

func (s *AccountService) register(ctx context.Context, id string, p models.Profile) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: id is required", ErrValidation)
	}
	return s.withUniqueCode(ctx, func(code string) error {
		acc := newAccount(id, p, code)
		return s.inTx(ctx, func(tx pgx.Tx) error {
			created, err := s.Accounts.CreateIfAbsent(ctx, tx, acc)
			if err != nil {
				return err
			}
			if !created {
				return fmt.Errorf("account %s: %w", id, ErrAlreadyRegistered)
			}
			return nil
		})
	})
}

// JoinWithReferral creates the account as referred by the owner of
// referralCode. The new account starts with the join bonus and the referrer
// is credited the configured refer bonus in the same transaction.
func (s *AccountService) JoinWithReferral(ctx context.Context, id string, p models.Profile, referralCode string) error {
	referrerID, bonus, err := s.join(ctx, id, p, referralCode)
	metrics.RecordLedgerOperation("join", outcome(err))
	if err != nil {
		return err
	}
	metrics.RecordPoints(models.PointsEntryJoinBonus, models.JoinBonus)
	metrics.RecordPoints(models.PointsEntryReferralBonus, bonus)

	s.notify(ctx, id, fmt.Sprintf("🎉 You’ve successfully joined via referral! You earned %d points.", models.JoinBonus))
	s.notify(ctx, referrerID, fmt.Sprintf("🎉 Your friend joined using your referral code! You earned %d points.", bonus))
	return nil
}

func (s *AccountService) join(ctx context.Context, id string, p models.Profile, referralCode string) (string, int64, error) {
	if id == "" {
		return "", 0, fmt.Errorf("%w: id is required", ErrValidation)
	}
	referralCode = strings.ToUpper(strings.TrimSpace(referralCode))
	if referralCode == "" {
		return "", 0, fmt.Errorf("empty code: %w", ErrInvalidReferralCode)
	}
	settings, err := s.Resolver.Resolve(ctx)
	if err != nil {
		return "", 0, err
	}

	var referrerID string
	_, err = s.withUniqueCode(ctx, func(code string) error {
		return s.inTx(ctx, func(tx pgx.Tx) error {
			referrer, err := s.Accounts.GetByReferralCode(ctx, tx, referralCode)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("code %s: %w", referralCode, ErrInvalidReferralCode)
			}
			if err != nil {
				return fmt.Errorf("resolve referral code: %w", err)
			}
			if referrer.ID == id {
				return fmt.Errorf("code %s belongs to the joining account: %w", referralCode, ErrInvalidReferralCode)
			}
			referrerID = referrer.ID

			acc := newAccount(id, p, code)
			acc.Balance = models.JoinBonus
			acc.ReferredBy = &referrer.ID
			created, err := s.Accounts.CreateIfAbsent(ctx, tx, acc)
			if err != nil {
				return err
			}
			if !created {
				return fmt.Errorf("account %s: %w", id, ErrAlreadyRegistered)
			}
			if err := s.Points.CreateTx(ctx, tx, &models.PointsEntry{
				ID: uuid.New(), AccountID: id, EntryType: models.PointsEntryJoinBonus,
				Amount: models.JoinBonus, BalanceAfter: models.JoinBonus, RefID: &referrer.ID,
			}); err != nil {
				return fmt.Errorf("ledger join bonus: %w", err)
			}

			newBalance, err := s.Accounts.AddPoints(ctx, tx, referrer.ID, settings.ReferBonus)
			if err != nil {
				return fmt.Errorf("credit referrer %s: %w", referrer.ID, err)
			}
			if err := s.Points.CreateTx(ctx, tx, &models.PointsEntry{
				ID: uuid.New(), AccountID: referrer.ID, EntryType: models.PointsEntryReferralBonus,
				Amount: settings.ReferBonus, BalanceAfter: newBalance, RefID: &acc.ID,
			}); err != nil {
				return fmt.Errorf("ledger referral bonus: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return "", 0, err
	}
	return referrerID, settings.ReferBonus, nil
}

// GetAccount returns the account with its completed tasks and withdrawal
// requests. It returns ErrAccountNotFound when the id is unknown.
func (s *AccountService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	acc, err := s.Accounts.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if acc.CompletedTasks, err = s.Accounts.ListCompletedTaskIDs(ctx, id); err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	if acc.WithdrawalRequests, err = s.Withdrawals.ListByAccountID(ctx, id); err != nil {
		return nil, fmt.Errorf("list withdrawal requests: %w", err)
	}
	return acc, nil
}

// History returns the account's points ledger, newest first.
func (s *AccountService) History(ctx context.Context, id string) ([]*models.PointsEntry, error) {
	if _, err := s.Accounts.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("account %s: %w", id, ErrAccountNotFound)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	entries, err := s.Points.ListByAccountID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list points ledger: %w", err)
	}
	if entries == nil {
		entries = []*models.PointsEntry{}
	}
	return entries, nil
}

// withUniqueCode calls create with fresh referral codes until one is not
// already taken. A unique violation on insert means another registration
// claimed the code between the check and the insert; it is retried too.
func (s *AccountService) withUniqueCode(ctx context.Context, create func(code string) error) (string, error) {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := newReferralCode()
		taken, err := s.Accounts.ReferralCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check referral code: %w", err)
		}
		if taken {
			s.Logger.Warn("referral code collision", "attempt", attempt)
			continue
		}
		err = create(code)
		if repository.IsReferralCodeConflict(err) {
			s.Logger.Warn("referral code collision on insert", "attempt", attempt)
			continue
		}
		if err != nil {
			return "", err
		}
		return code, nil
	}
	return "", errCodeSpaceExhausted
}

func (s *AccountService) notify(ctx context.Context, chatID, text string) {
	notifyBestEffort(ctx, s.Notifier, s.Logger, chatID, text)
}

func newAccount(id string, p models.Profile, code string) *models.Account {
	p = p.WithDefaults()
	return &models.Account{
		ID:           id,
		DisplayName:  p.DisplayName,
		AvatarRef:    p.AvatarRef,
		Contact:      p.Contact,
		ReferralCode: code,
	}
}

// notifyBestEffort sends text to chatID; failures are logged and dropped.
func notifyBestEffort(ctx context.Context, n Notifier, logger *slog.Logger, chatID, text string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, chatID, text); err != nil {
		logger.Warn("notify failed", "chat_id", chatID, "error", err)
	}
}
