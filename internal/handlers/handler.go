package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/referearn/backend/internal/models"
	"github.com/referearn/backend/internal/services"
)

const maxBodyBytes = 1 << 20

// AccountService is the account lifecycle used by the handlers.
type AccountService interface {
	Register(ctx context.Context, id string, p models.Profile) (string, error)
	JoinWithReferral(ctx context.Context, id string, p models.Profile, referralCode string) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	History(ctx context.Context, id string) ([]*models.PointsEntry, error)
}

type TaskService interface {
	CompleteTask(ctx context.Context, accountID, taskID string) (int64, error)
	ListTasks(ctx context.Context) (map[string]*models.Task, error)
}

type WithdrawalService interface {
	RequestWithdraw(ctx context.Context, in services.WithdrawInput) (*models.WithdrawalRequest, error)
}

type AdminService interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	UpdateSettings(ctx context.Context, adminID string, s models.Settings) (*models.Settings, error)
	AddTask(ctx context.Context, adminID string, t models.Task) (*models.Task, error)
}

// RequestValidator checks a raw request body against a named schema.
type RequestValidator interface {
	Validate(name string, body []byte) error
}

// Handler serves the /api endpoints.
type Handler struct {
	Accounts    AccountService
	Tasks       TaskService
	Withdrawals WithdrawalService
	Admin       AdminService
	Validator   RequestValidator
	Logger      *slog.Logger
}

func New(accounts AccountService, tasks TaskService, withdrawals WithdrawalService, admin AdminService, validator RequestValidator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Accounts:    accounts,
		Tasks:       tasks,
		Withdrawals: withdrawals,
		Admin:       admin,
		Validator:   validator,
		Logger:      logger,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// decode reads the body, validates it against schema and unmarshals it into v.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, schema string, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return errors.Join(services.ErrValidation, err)
	}
	if err := h.Validator.Validate(schema, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Join(services.ErrValidation, err)
	}
	return nil
}

// writeError maps err to its status and error body. Unclassified errors are
// logged and reported without detail.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, kind := services.Classify(err)
	status := statusFor(code, kind)
	msg := err.Error()
	if kind == services.KindStore {
		h.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: code, Kind: string(kind), Message: msg})
}

func statusFor(code string, kind services.Kind) int {
	switch code {
	case "AccountNotFound":
		return http.StatusNotFound
	case "AlreadyRegistered":
		return http.StatusConflict
	case "Unauthorized":
		return http.StatusForbidden
	}
	if kind == services.KindStore {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
