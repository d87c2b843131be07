package notify

import (
	"context"
	"fmt"

	"github.com/referearn/backend/internal/metrics"
)

// InsertFunc enqueues a send_message job. main wires it to the river client
// once the client exists.
type InsertFunc func(ctx context.Context, args SendMessageArgs) error

// QueueNotifier turns notifications into river jobs so delivery never blocks
// or fails a ledger operation.
type QueueNotifier struct {
	insert InsertFunc
}

func NewQueueNotifier(insert InsertFunc) *QueueNotifier {
	return &QueueNotifier{insert: insert}
}

// Notify enqueues a plain-text message for chatID.
func (q *QueueNotifier) Notify(ctx context.Context, chatID, text string) error {
	return q.Enqueue(ctx, SendMessageArgs{ChatID: chatID, Text: text})
}

func (q *QueueNotifier) Enqueue(ctx context.Context, args SendMessageArgs) error {
	if args.ChatID == "" {
		return fmt.Errorf("enqueue message: empty chat id")
	}
	if err := q.insert(ctx, args); err != nil {
		metrics.RecordNotification("enqueue_failed")
		return fmt.Errorf("enqueue message: %w", err)
	}
	metrics.RecordNotification("enqueued")
	return nil
}
