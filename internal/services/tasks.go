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

// TaskService credits accounts for completing catalog tasks.
type TaskService struct {
	Stores
	Resolver *SettingsResolver
	Notifier Notifier
	Logger   *slog.Logger
}

func NewTaskService(st Stores, notifier Notifier, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		Stores:   st,
		Resolver: NewSettingsResolver(st.Settings),
		Notifier: notifier,
		Logger:   logger,
	}
}

// CompleteTask marks taskID as completed by the account and credits the
// configured task points. Each (account, task) pair is credited at most once.
func (s *TaskService) CompleteTask(ctx context.Context, accountID, taskID string) (int64, error) {
	points, err := s.complete(ctx, accountID, taskID)
	metrics.RecordLedgerOperation("complete_task", outcome(err))
	if err != nil {
		return 0, err
	}
	metrics.RecordPoints(models.PointsEntryTaskReward, points)
	notifyBestEffort(ctx, s.Notifier, s.Logger, accountID, fmt.Sprintf("✅ Task completed! You earned %d points.", points))
	return points, nil
}

func (s *TaskService) complete(ctx context.Context, accountID, taskID string) (int64, error) {
	if accountID == "" || taskID == "" {
		return 0, fmt.Errorf("%w: id and taskId are required", ErrValidation)
	}
	settings, err := s.Resolver.Resolve(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := s.Tasks.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
		}
		return 0, fmt.Errorf("get task: %w", err)
	}
	if _, err := s.Accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("account %s: %w", accountID, ErrAccountNotFound)
		}
		return 0, fmt.Errorf("get account: %w", err)
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		added, err := s.Accounts.AddCompletedTask(ctx, tx, accountID, taskID)
		if err != nil {
			return fmt.Errorf("record completion: %w", err)
		}
		if !added {
			return fmt.Errorf("task %s: %w", taskID, ErrAlreadyCompleted)
		}
		newBalance, err := s.Accounts.AddPoints(ctx, tx, accountID, settings.TaskPoints)
		if err != nil {
			return fmt.Errorf("credit account: %w", err)
		}
		return s.Points.CreateTx(ctx, tx, &models.PointsEntry{
			ID: uuid.New(), AccountID: accountID, EntryType: models.PointsEntryTaskReward,
			Amount: settings.TaskPoints, BalanceAfter: newBalance, RefID: &taskID,
		})
	})
	if err != nil {
		return 0, err
	}
	return settings.TaskPoints, nil
}

// ListTasks returns the task catalog keyed by task id.
func (s *TaskService) ListTasks(ctx context.Context) (map[string]*models.Task, error) {
	list, err := s.Tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := make(map[string]*models.Task, len(list))
	for _, t := range list {
		out[t.ID] = t
	}
	return out, nil
}
