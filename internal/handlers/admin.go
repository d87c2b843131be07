package handlers

import (
	"net/http"

	"github.com/referearn/backend/internal/models"
	"github.com/referearn/backend/internal/services"
)

type updateSettingsRequest struct {
	AdminID         models.ChatID `json:"adminId"`
	MinWithdraw     int64         `json:"minWithdraw"`
	ReferBonus      int64         `json:"referBonus"`
	TaskPoints      int64         `json:"taskPoints"`
	WithdrawMethods []string      `json:"withdrawMethods"`
}

type addTaskRequest struct {
	AdminID  models.ChatID `json:"adminId"`
	TaskID   string        `json:"taskId"`
	TaskName string        `json:"taskName"`
	TaskLink string        `json:"taskLink"`
}

type addTaskResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"taskId"`
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Admin.GetSettings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings handles POST /api/admin/settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := h.decode(w, r, services.SchemaAdminSettings, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	_, err := h.Admin.UpdateSettings(r.Context(), req.AdminID.String(), models.Settings{
		MinWithdraw:     req.MinWithdraw,
		ReferBonus:      req.ReferBonus,
		TaskPoints:      req.TaskPoints,
		WithdrawMethods: req.WithdrawMethods,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Settings updated"})
}

// AddTask handles POST /api/admin/task.
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if err := h.decode(w, r, services.SchemaAdminTask, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	t, err := h.Admin.AddTask(r.Context(), req.AdminID.String(), models.Task{
		ID:   req.TaskID,
		Name: req.TaskName,
		Link: req.TaskLink,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addTaskResponse{Message: "Task added", TaskID: t.ID})
}
