package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/riverqueue/river"

	"github.com/referearn/backend/internal/metrics"
)

// SendMessageArgs is the river job that delivers one chat message.
type SendMessageArgs struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

func (SendMessageArgs) Kind() string { return "send_message" }

func (SendMessageArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 5}
}

// MessageSender is the transport the worker delivers through.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID, text, parseMode string) error
}

type SendMessageWorker struct {
	river.WorkerDefaults[SendMessageArgs]
	sender MessageSender
	logger *slog.Logger
}

func NewSendMessageWorker(sender MessageSender, logger *slog.Logger) *SendMessageWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendMessageWorker{sender: sender, logger: logger}
}

func (w *SendMessageWorker) Timeout(*river.Job[SendMessageArgs]) time.Duration {
	return 15 * time.Second
}

func (w *SendMessageWorker) Work(ctx context.Context, job *river.Job[SendMessageArgs]) error {
	args := job.Args
	err := w.sender.SendMessage(ctx, args.ChatID, args.Text, args.ParseMode)
	if err == nil {
		metrics.RecordNotification("sent")
		return nil
	}

	var apiErr *APIError
	if errors.Is(err, ErrNotConfigured) || (errors.As(err, &apiErr) && apiErr.Permanent()) {
		metrics.RecordNotification("dropped")
		w.logger.Warn("dropping notification", "chat_id", args.ChatID, "job_id", job.ID, "error", err)
		return river.JobCancel(err)
	}
	metrics.RecordNotification("retry")
	return err
}
