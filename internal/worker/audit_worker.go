// Package worker consumes ledger mutation events and writes them to
// the local audit trail.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/channkenn/pta-kaikei/internal/amqp"
	"github.com/channkenn/pta-kaikei/internal/storage"
)

// AuditStore is the slice of the repository the worker needs.
type AuditStore interface {
	RecordEvent(ctx context.Context, ev storage.AuditEvent) (int64, error)
}

// AuditWorker turns consumed ledger events into audit rows.
type AuditWorker struct {
	store AuditStore
}

func NewAuditWorker(store AuditStore) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleEvent processes a single ledger event message. Returning an
// error requeues the message.
func (w *AuditWorker) HandleEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if msg.Action != amqp.ActionAppend && msg.Action != amqp.ActionDelete {
		// Unknown actions are dropped, not requeued: a newer publisher
		// would otherwise wedge the queue.
		slog.WarnContext(ctx, "Dropping event with unknown action", "action", msg.Action, "year", msg.Year)
		return nil
	}
	if msg.Year == "" {
		slog.WarnContext(ctx, "Dropping event without year", "action", msg.Action)
		return nil
	}

	id, err := w.store.RecordEvent(ctx, storage.AuditEvent{
		Action:     msg.Action,
		Year:       msg.Year,
		RowNum:     msg.RowNum,
		Date:       msg.Date,
		Category:   msg.Category,
		Amount:     msg.Amount,
		OccurredAt: msg.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	slog.InfoContext(ctx, "Audit event stored",
		"id", id,
		"action", msg.Action,
		"year", msg.Year)
	return nil
}
