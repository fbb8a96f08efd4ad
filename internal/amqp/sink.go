package amqp

import (
	"context"
	"log/slog"

	"github.com/channkenn/pta-kaikei/internal/core"
)

// Sink turns confirmed ledger mutations into published events. Publish
// failures are logged and swallowed: the mutation already happened on
// the remote store, so the user flow must not fail because the broker
// is down.
type Sink struct {
	client *Client
}

func NewSink(client *Client) *Sink {
	return &Sink{client: client}
}

func (s *Sink) RecordAppended(ctx context.Context, year string, rec core.Record) {
	if err := s.client.PublishLedgerEvent(ctx, NewAppendMessage(year, rec)); err != nil {
		slog.WarnContext(ctx, "Failed to publish append event", "error", err, "year", year, "category", rec.Category)
	}
}

func (s *Sink) RecordDeleted(ctx context.Context, year string, rowNum int64) {
	if err := s.client.PublishLedgerEvent(ctx, NewDeleteMessage(year, rowNum)); err != nil {
		slog.WarnContext(ctx, "Failed to publish delete event", "error", err, "year", year, "row_num", rowNum)
	}
}
