package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/referearn/backend/internal/notify"
)

// MessageQueue enqueues outgoing bot messages.
type MessageQueue interface {
	Enqueue(ctx context.Context, args notify.SendMessageArgs) error
}

// TelegramHandler receives bot updates pushed by the Telegram webhook.
type TelegramHandler struct {
	Queue  MessageQueue
	Logger *slog.Logger
}

func NewTelegramHandler(queue MessageQueue, logger *slog.Logger) *TelegramHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramHandler{Queue: queue, Logger: logger}
}

type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		From *struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"from"`
	} `json:"message"`
}

// Webhook handles POST /telegram/webhook. Updates other than /start are
// acknowledged and ignored.
func (h *TelegramHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var u telegramUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ValidationError", Kind: "ValidationError", Message: "invalid update"})
		return
	}
	msg := u.Message
	if msg == nil || !isStartCommand(msg.Text) {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	var fullName string
	if msg.From != nil {
		fullName = strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	}
	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	err := h.Queue.Enqueue(r.Context(), notify.SendMessageArgs{
		ChatID:    chatID,
		Text:      notify.WelcomeMessage(fullName),
		ParseMode: "Markdown",
	})
	if err != nil {
		h.Logger.Warn("welcome enqueue failed", "chat_id", chatID, "update_id", u.UpdateID, "error", err)
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// isStartCommand matches "/start", "/start payload" and "/start@BotName".
func isStartCommand(text string) bool {
	cmd, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd == "/start"
}
