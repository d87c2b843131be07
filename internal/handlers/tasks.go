package handlers

import (
	"net/http"

	"github.com/referearn/backend/internal/models"
	"github.com/referearn/backend/internal/services"
)

type completeTaskRequest struct {
	ID     models.ChatID `json:"id"`
	TaskID string        `json:"taskId"`
}

type completeTaskResponse struct {
	Message string `json:"message"`
	Points  int64  `json:"points"`
}

// CompleteTask handles POST /api/task/complete.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	var req completeTaskRequest
	if err := h.decode(w, r, services.SchemaTaskComplete, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	points, err := h.Tasks.CompleteTask(r.Context(), req.ID.String(), req.TaskID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Logger.Info("task completed", "account_id", req.ID, "task_id", req.TaskID, "points", points)
	writeJSON(w, http.StatusOK, completeTaskResponse{Message: "Task completed, points added!", Points: points})
}

// ListTasks handles GET /api/tasks.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Tasks.ListTasks(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}
