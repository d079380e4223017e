// Package worker exports recorded ledger transactions to the configured
// spreadsheet as they arrive over AMQP.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"ledger/internal/amqp"
)

// RowAppender is the slice of the sheets client the worker needs.
type RowAppender interface {
	AppendRow(ctx context.Context, id int64, title, typ string, valueCents int64, category string) (string, error)
}

// ExportWorker appends each recorded transaction to the export sheet.
// Failures propagate so the AMQP delivery is requeued and retried.
type ExportWorker struct {
	appender RowAppender
}

func NewExportWorker(appender RowAppender) *ExportWorker {
	return &ExportWorker{appender: appender}
}

// HandleRecorded processes one recorded-transaction message.
func (w *ExportWorker) HandleRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	ref, err := w.appender.AppendRow(ctx, msg.ID, msg.Title, msg.Type, msg.ValueCents, msg.Category)
	if err != nil {
		return fmt.Errorf("export transaction %d: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"id", msg.ID,
		"sheet_ref", ref,
		"value_cents", msg.ValueCents)
	return nil
}
