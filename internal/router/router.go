package router

import (
	"log/slog"
	"net/http"

	"github.com/referearn/backend/internal/handlers"
	"github.com/referearn/backend/internal/metrics"
	"github.com/referearn/backend/internal/middleware"
)

// Deps are the handlers and collaborators mounted by New.
type Deps struct {
	API           *handlers.Handler
	Telegram      *handlers.TelegramHandler
	Admins        middleware.AdminChecker
	DB            handlers.Pinger
	WebhookSecret string
	Logger        *slog.Logger
}

// New returns an http.Handler that serves the JSON API under /api, the
// Telegram webhook, /healthz and /metrics.
func New(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	base := "/api"

	mux.HandleFunc("POST "+base+"/register", d.API.Register)
	mux.HandleFunc("POST "+base+"/refer", d.API.Refer)
	mux.HandleFunc("GET "+base+"/user/{id}", d.API.GetUser)
	mux.HandleFunc("GET "+base+"/user/{id}/history", d.API.GetHistory)
	mux.HandleFunc("POST "+base+"/task/complete", d.API.CompleteTask)
	mux.HandleFunc("GET "+base+"/tasks", d.API.ListTasks)
	mux.HandleFunc("POST "+base+"/withdraw", d.API.Withdraw)
	mux.HandleFunc("GET "+base+"/settings", d.API.GetSettings)

	adminOnly := middleware.AdminOnly(d.Admins, logger)
	mux.Handle("POST "+base+"/admin/settings", adminOnly(http.HandlerFunc(d.API.UpdateSettings)))
	mux.Handle("POST "+base+"/admin/task", adminOnly(http.HandlerFunc(d.API.AddTask)))

	if d.Telegram != nil {
		mux.Handle("POST /telegram/webhook", middleware.WebhookSecret(d.WebhookSecret)(http.HandlerFunc(d.Telegram.Webhook)))
	}

	mux.HandleFunc("GET /healthz", handlers.Health(d.DB, logger))
	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}
