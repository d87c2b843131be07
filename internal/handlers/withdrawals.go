package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/referearn/backend/internal/models"
	"github.com/referearn/backend/internal/services"
)

type withdrawRequest struct {
	ID      models.ChatID `json:"id"`
	Amount  int64         `json:"amount"`
	Method  string        `json:"method"`
	Details string        `json:"details"`
}

type withdrawResponse struct {
	Message   string    `json:"message"`
	RequestID uuid.UUID `json:"requestId"`
}

// Withdraw handles POST /api/withdraw.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := h.decode(w, r, services.SchemaWithdraw, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	wr, err := h.Withdrawals.RequestWithdraw(r.Context(), services.WithdrawInput{
		AccountID: req.ID.String(),
		Amount:    req.Amount,
		Method:    req.Method,
		Details:   req.Details,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Logger.Info("withdraw requested", "account_id", req.ID, "request_id", wr.ID, "amount", wr.Amount, "method", wr.Method)
	writeJSON(w, http.StatusOK, withdrawResponse{Message: "Withdraw request submitted", RequestID: wr.ID})
}
