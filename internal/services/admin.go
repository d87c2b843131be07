package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/referearn/backend/internal/metrics"
	"github.com/referearn/backend/internal/models"
)

// AdminService applies operator changes to the settings and task catalog.
// Only ids in the configured admin set may call it.
type AdminService struct {
	Stores
	Resolver *SettingsResolver
	Logger   *slog.Logger

	admins map[string]struct{}
}

func NewAdminService(st Stores, adminIDs []string, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &AdminService{
		Stores:   st,
		Resolver: NewSettingsResolver(st.Settings),
		Logger:   logger,
		admins:   admins,
	}
}

// IsAdmin reports whether id is in the configured admin set.
func (s *AdminService) IsAdmin(id string) bool {
	_, ok := s.admins[id]
	return ok
}

// AdminIDs returns the configured admin ids in no particular order.
func (s *AdminService) AdminIDs() []string {
	out := make([]string, 0, len(s.admins))
	for id := range s.admins {
		out = append(out, id)
	}
	return out
}

func (s *AdminService) authorize(adminID string) error {
	if !s.IsAdmin(adminID) {
		return fmt.Errorf("admin %q: %w", adminID, ErrUnauthorized)
	}
	return nil
}

// GetSettings returns the effective settings.
func (s *AdminService) GetSettings(ctx context.Context) (models.Settings, error) {
	return s.Resolver.Resolve(ctx)
}

// UpdateSettings validates and overwrites the settings singleton.
func (s *AdminService) UpdateSettings(ctx context.Context, adminID string, in models.Settings) (*models.Settings, error) {
	out, err := s.updateSettings(ctx, adminID, in)
	metrics.RecordLedgerOperation("update_settings", outcome(err))
	return out, err
}

func (s *AdminService) updateSettings(ctx context.Context, adminID string, in models.Settings) (*models.Settings, error) {
	if err := s.authorize(adminID); err != nil {
		return nil, err
	}
	settings, err := normalizeSettings(in)
	if err != nil {
		return nil, err
	}
	if err := s.Settings.Put(ctx, settings); err != nil {
		return nil, fmt.Errorf("write settings: %w", err)
	}
	s.Logger.Info("settings updated", "admin_id", adminID,
		"min_withdraw", settings.MinWithdraw, "refer_bonus", settings.ReferBonus,
		"task_points", settings.TaskPoints, "withdraw_methods", settings.WithdrawMethods)
	return settings, nil
}

// normalizeSettings checks ranges and drops empty and duplicate methods while
// keeping their order.
func normalizeSettings(in models.Settings) (*models.Settings, error) {
	if in.MinWithdraw <= 0 {
		return nil, fmt.Errorf("minWithdraw must be positive: %w", ErrInvalidSettings)
	}
	if in.ReferBonus < 0 {
		return nil, fmt.Errorf("referBonus must not be negative: %w", ErrInvalidSettings)
	}
	if in.TaskPoints < 0 {
		return nil, fmt.Errorf("taskPoints must not be negative: %w", ErrInvalidSettings)
	}
	seen := make(map[string]bool, len(in.WithdrawMethods))
	methods := make([]string, 0, len(in.WithdrawMethods))
	for _, m := range in.WithdrawMethods {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		methods = append(methods, m)
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("at least one withdraw method is required: %w", ErrInvalidSettings)
	}
	return &models.Settings{
		MinWithdraw:     in.MinWithdraw,
		ReferBonus:      in.ReferBonus,
		TaskPoints:      in.TaskPoints,
		WithdrawMethods: methods,
	}, nil
}

// AddTask creates or overwrites a catalog task. An empty id is replaced by a
// generated one.
func (s *AdminService) AddTask(ctx context.Context, adminID string, t models.Task) (*models.Task, error) {
	out, err := s.addTask(ctx, adminID, t)
	metrics.RecordLedgerOperation("add_task", outcome(err))
	return out, err
}

func (s *AdminService) addTask(ctx context.Context, adminID string, t models.Task) (*models.Task, error) {
	if err := s.authorize(adminID); err != nil {
		return nil, err
	}
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("task id: %w", err)
		}
		t.ID = id.String()
	}
	if err := s.Tasks.Upsert(ctx, &t); err != nil {
		return nil, fmt.Errorf("write task: %w", err)
	}
	s.Logger.Info("task saved", "admin_id", adminID, "task_id", t.ID)
	return &t, nil
}
