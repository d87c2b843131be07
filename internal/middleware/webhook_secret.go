package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// TelegramSecretHeader carries the secret_token registered with setWebhook.
const TelegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecret admits only requests whose secret header matches secret.
// An empty secret rejects everything.
func WebhookSecret(secret string) func(http.Handler) http.Handler {
	want := hashKey(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(TelegramSecretHeader)
			if secret == "" || got == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "AuthorizationError", "missing webhook secret")
				return
			}
			gotHash := hashKey(got)
			if subtle.ConstantTimeCompare(gotHash[:], want[:]) != 1 {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "AuthorizationError", "invalid webhook secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hashKey fixes the compared length so the comparison time does not depend
// on the length of the supplied secret.
func hashKey(raw string) [sha256.Size]byte {
	return sha256.Sum256([]byte(raw))
}
