package handlers

import (
	"errors"
	"net/http"

	"github.com/referearn/backend/internal/models"
	"github.com/referearn/backend/internal/services"
)

type profileRequest struct {
	ID          models.ChatID `json:"id"`
	Contact     string        `json:"contact"`
	DisplayName string        `json:"displayName"`
	AvatarRef   string        `json:"avatarRef"`
}

func (p profileRequest) profile() models.Profile {
	return models.Profile{Contact: p.Contact, DisplayName: p.DisplayName, AvatarRef: p.AvatarRef}
}

type referRequest struct {
	profileRequest
	ReferralCode string `json:"referralCode"`
}

type registerResponse struct {
	ReferralCode string `json:"referralCode"`
}

// Register handles POST /api/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := h.decode(w, r, services.SchemaRegister, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	code, err := h.Accounts.Register(r.Context(), req.ID.String(), req.profile())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Logger.Info("account registered", "account_id", req.ID)
	writeJSON(w, http.StatusOK, registerResponse{ReferralCode: code})
}

// Refer handles POST /api/refer.
func (h *Handler) Refer(w http.ResponseWriter, r *http.Request) {
	var req referRequest
	if err := h.decode(w, r, services.SchemaRefer, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Accounts.JoinWithReferral(r.Context(), req.ID.String(), req.profile(), req.ReferralCode); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.Logger.Info("account joined via referral", "account_id", req.ID)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Referral successful"})
}

// GetUser handles GET /api/user/{id}. Unknown ids yield an empty object.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	acc, err := h.Accounts.GetAccount(r.Context(), r.PathValue("id"))
	if errors.Is(err, services.ErrAccountNotFound) {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}

// GetHistory handles GET /api/user/{id}/history.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Accounts.History(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
