package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/referearn/backend/internal/models"
)

// SettingsResolver returns the effective reward settings: the stored row when
// one exists, the defaults otherwise.
type SettingsResolver struct {
	Store SettingsStore
}

func NewSettingsResolver(store SettingsStore) *SettingsResolver {
	return &SettingsResolver{Store: store}
}

func (r *SettingsResolver) Resolve(ctx context.Context) (models.Settings, error) {
	s, err := r.Store.Get(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if len(s.WithdrawMethods) == 0 {
		s.WithdrawMethods = models.DefaultSettings().WithdrawMethods
	}
	return *s, nil
}
