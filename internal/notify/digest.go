package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"
)

// PendingDigestArgs is the periodic job that tells admins how many
// withdrawal requests are waiting for manual payout.
type PendingDigestArgs struct{}

func (PendingDigestArgs) Kind() string { return "pending_withdrawal_digest" }

// PendingSummarizer reports the pending withdrawal backlog.
type PendingSummarizer interface {
	PendingSummary(ctx context.Context) (count int64, points int64, err error)
}

type PendingDigestWorker struct {
	river.WorkerDefaults[PendingDigestArgs]
	summary  PendingSummarizer
	notifier *QueueNotifier
	admins   []string
	logger   *slog.Logger
}

func NewPendingDigestWorker(summary PendingSummarizer, notifier *QueueNotifier, admins []string, logger *slog.Logger) *PendingDigestWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &PendingDigestWorker{summary: summary, notifier: notifier, admins: admins, logger: logger}
}

func (w *PendingDigestWorker) Work(ctx context.Context, job *river.Job[PendingDigestArgs]) error {
	count, points, err := w.summary.PendingSummary(ctx)
	if err != nil {
		return fmt.Errorf("pending summary: %w", err)
	}
	if count == 0 {
		return nil
	}
	text := DigestMessage(count, points)
	for _, id := range w.admins {
		if err := w.notifier.Notify(ctx, id, text); err != nil {
			w.logger.Warn("digest notify failed", "admin_id", id, "error", err)
		}
	}
	w.logger.Info("pending withdrawal digest sent", "pending", count, "points", points, "admins", len(w.admins))
	return nil
}
