package main

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/referearn/backend/internal/config"
	"github.com/referearn/backend/internal/handlers"
	"github.com/referearn/backend/internal/notify"
	"github.com/referearn/backend/internal/repository"
	"github.com/referearn/backend/internal/router"
	"github.com/referearn/backend/internal/services"
)

// newRouter wires repositories, services and handlers into the HTTP router.
func newRouter(
	pool *pgxpool.Pool,
	withdrawalRepo *repository.WithdrawalRepo,
	notifier *notify.QueueNotifier,
	cfg *config.Config,
	logger *slog.Logger,
) (http.Handler, error) {
	stores := services.Stores{
		Pool:        pool,
		Accounts:    repository.NewAccountRepo(pool),
		Tasks:       repository.NewTaskRepo(pool),
		Settings:    repository.NewSettingsRepo(pool),
		Withdrawals: withdrawalRepo,
		Points:      repository.NewPointsRepo(pool),
	}

	validator, err := services.NewValidator()
	if err != nil {
		return nil, err
	}

	admin := services.NewAdminService(stores, cfg.Admins(), logger)
	if len(admin.AdminIDs()) == 0 {
		slog.Warn("ADMIN_IDS is empty; admin endpoints will reject every request")
	}

	api := handlers.New(
		services.NewAccountService(stores, notifier, logger),
		services.NewTaskService(stores, notifier, logger),
		services.NewWithdrawalService(stores, notifier, logger),
		admin,
		validator,
		logger,
	)

	return router.New(router.Deps{
		API:           api,
		Telegram:      handlers.NewTelegramHandler(notifier, logger),
		Admins:        admin,
		DB:            pool,
		WebhookSecret: cfg.TelegramWebhookSecret,
		Logger:        logger,
	}), nil
}
