// Package worker rebuilds denormalized month totals when expenses change.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/report"
)

// SnapshotStore is the slice of the repository the worker needs.
type SnapshotStore interface {
	ListAllExpenseRows(ctx context.Context, ownerID string) ([]report.ExpenseRow, error)
	ReplaceMonthSnapshots(ctx context.Context, ownerID string, totals []report.MonthAmount) error
}

// SnapshotWorker consumes expense events and rewrites the owner's month
// snapshots from scratch. Events carry no amounts, so handling one twice or
// out of order yields the same result.
type SnapshotWorker struct {
	store SnapshotStore
}

func NewSnapshotWorker(store SnapshotStore) *SnapshotWorker {
	return &SnapshotWorker{store: store}
}

// HandleExpenseEvent recomputes every month total for the event's owner.
func (w *SnapshotWorker) HandleExpenseEvent(ctx context.Context, event *amqp.ExpenseEvent) error {
	if event.OwnerID == "" {
		slog.WarnContext(ctx, "Dropping expense event without owner", "id", event.ID)
		return nil
	}

	slog.InfoContext(ctx, "Rebuilding month snapshots",
		"owner_id", event.OwnerID,
		"trigger_id", event.ID,
		"action", event.Action)

	rows, err := w.store.ListAllExpenseRows(ctx, event.OwnerID)
	if err != nil {
		return fmt.Errorf("list expense rows: %w", err)
	}

	agg := report.Aggregate(rows)
	for _, warning := range agg.Warnings {
		slog.WarnContext(ctx, "Snapshot rebuild skipped a record",
			"owner_id", event.OwnerID,
			"detail", warning)
	}

	if err := w.store.ReplaceMonthSnapshots(ctx, event.OwnerID, agg.ByMonth); err != nil {
		return fmt.Errorf("replace month snapshots: %w", err)
	}

	slog.InfoContext(ctx, "Month snapshots rebuilt",
		"owner_id", event.OwnerID,
		"months", len(agg.ByMonth),
		"total", agg.Total.String())

	return nil
}
