// Package worker contains the background consumers that react to
// ledger events published over AMQP.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"familybank/internal/amqp"
	"familybank/internal/backup"
	"familybank/internal/core"
	applog "familybank/internal/log"
)

// TransactionReader loads ledger rows for event enrichment.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	GetChild(ctx context.Context, id string) (core.Child, error)
}

// NotifyWorker turns ledger events into parent-facing notifications and
// mirrors recorded transactions to the configured backup target.
type NotifyWorker struct {
	reader TransactionReader
	writer backup.TransactionWriter // nil when no backup is configured
}

func NewNotifyWorker(reader TransactionReader, writer backup.TransactionWriter) *NotifyWorker {
	return &NotifyWorker{reader: reader, writer: writer}
}

// HandleEvent processes one ledger event. Returning an error requeues
// the message, so only transient failures should error out.
func (w *NotifyWorker) HandleEvent(msg *amqp.LedgerEventMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch msg.Event {
	case amqp.EventTransactionRecorded:
		return w.handleTransactionRecorded(ctx, msg)
	case amqp.EventGoalCompleted:
		slog.InfoContext(ctx, "Goal completed notification",
			applog.FieldComponent, applog.ComponentNotify,
			applog.FieldChildID, msg.ChildID,
			applog.FieldGoalID, msg.GoalID,
			applog.FieldAmountCents, msg.AmountCents)
		return nil
	case amqp.EventInterestApplied:
		slog.InfoContext(ctx, "Interest applied notification", "occurred_at", msg.OccurredAt)
		return nil
	default:
		slog.WarnContext(ctx, "Unknown ledger event, dropping", "event", msg.Event)
		return nil
	}
}

func (w *NotifyWorker) handleTransactionRecorded(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	tx, err := w.reader.GetTransaction(ctx, msg.TransactionID)
	if err != nil {
		// The write behind this event is best-effort, so the row may
		// not exist. Drop instead of requeueing forever.
		slog.WarnContext(ctx, "Transaction not found for event, dropping",
			"transaction_id", msg.TransactionID, "error", err)
		return nil
	}

	childName := msg.ChildID
	if child, err := w.reader.GetChild(ctx, tx.ChildID); err == nil {
		childName = child.Name
	}

	fields := applog.NewFields().
		WithComponent(applog.ComponentNotify).
		WithTransaction(tx.ChildID, string(tx.Kind), tx.Category, tx.Amount.Cents)
	slog.InfoContext(ctx, "Transaction notification", append(fields.ToSlice(), "child", childName)...)

	if w.writer == nil {
		return nil
	}
	ref, err := w.writer.Append(ctx, childName, tx)
	if err != nil {
		return fmt.Errorf("backup transaction %s: %w", tx.ID, err)
	}
	slog.InfoContext(ctx, "Transaction mirrored to backup",
		applog.FieldTransactionID, tx.ID, applog.FieldSheetsRef, ref)
	return nil
}
