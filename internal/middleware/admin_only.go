package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/referearn/backend/internal/models"
)

const ctxAdminKey contextKey = "admin_id"

// maxAdminBody bounds how much of an admin request body is buffered.
const maxAdminBody = 64 << 10

// AdminChecker reports whether an id belongs to the configured admin set.
type AdminChecker interface {
	IsAdmin(id string) bool
}

// AdminIDFromCtx returns the admin id accepted by AdminOnly, or "".
func AdminIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(ctxAdminKey).(string)
	return id
}

// AdminOnly rejects requests whose JSON body does not carry an "adminId"
// from the admin set. Reads the body to extract it, then replaces r.Body so
// downstream handlers can re-read it.
func AdminOnly(admins AdminChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxAdminBody+1))
			r.Body.Close()
			if err != nil {
				writeError(w, http.StatusBadRequest, "ValidationError", "ValidationError", "failed to read body")
				return
			}
			if len(bodyBytes) > maxAdminBody {
				writeError(w, http.StatusRequestEntityTooLarge, "ValidationError", "ValidationError", "body too large")
				return
			}
			// Restore body for the handler.
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			var peek struct {
				AdminID models.ChatID `json:"adminId"`
			}
			if err := json.Unmarshal(bodyBytes, &peek); err != nil {
				writeError(w, http.StatusBadRequest, "ValidationError", "ValidationError", "invalid JSON body")
				return
			}
			id := peek.AdminID.String()
			if id == "" || !admins.IsAdmin(id) {
				logger.Warn("admin request rejected", "admin_id", id, "path", r.URL.Path)
				writeError(w, http.StatusForbidden, "Unauthorized", "AuthorizationError", "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), ctxAdminKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
