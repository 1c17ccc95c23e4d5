// Package report implements the budget-vs-actual reporting engine: date
// range validation, expense aggregation, budget period normalization and
// variance comparison.
//
// A report is a pure per-request computation. The engine reads a snapshot of
// the caller's expense and budget rows through an injected RecordStore,
// reduces them, and returns a fresh Result; nothing is cached or persisted.
// Validation and fetch failures abort the request; a defect in a single row
// only removes that row's contribution.
package report

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
)

// RecordStore supplies the two read operations the engine consumes.
type RecordStore interface {
	// ListExpenseRows returns the owner's expenses with dates inside the
	// inclusive window.
	ListExpenseRows(ctx context.Context, ownerID string, window core.DateRange) ([]ExpenseRow, error)
	// ListBudgetRows returns all budgets the owner has, regardless of date.
	ListBudgetRows(ctx context.Context, ownerID string) ([]BudgetRow, error)
}

type (
	// CategoryTotal is one category's total over the window.
	CategoryTotal struct {
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
	}

	// MonthTotal is one calendar month's total.
	MonthTotal struct {
		Month  string  `json:"month"`
		Amount float64 `json:"amount"`
	}

	// BudgetComparison is the variance of one budget: difference is the
	// normalized budget minus the actual spend.
	BudgetComparison struct {
		Category   string  `json:"category"`
		Budget     float64 `json:"budget"`
		Actual     float64 `json:"actual"`
		Difference float64 `json:"difference"`
	}

	// Result is the report payload. Slices are always non-nil so the JSON
	// encoding never contains null arrays.
	Result struct {
		TotalExpenses      float64            `json:"totalExpenses"`
		ExpensesByCategory []CategoryTotal    `json:"expensesByCategory"`
		ExpensesByMonth    []MonthTotal       `json:"expensesByMonth"`
		BudgetComparison   []BudgetComparison `json:"budgetComparison"`
	}
)

// Generator produces summary reports from an injected record store.
type Generator struct {
	store RecordStore
}

func NewGenerator(store RecordStore) *Generator {
	return &Generator{store: store}
}

// Summary generates the budget-vs-actual report for the owner over the
// requested window. The two fetches are independent reads and run
// concurrently. Once both succeed the computation cannot fail: row defects
// are absorbed as warnings and the result is emitted even when every row was
// skipped.
func (g *Generator) Summary(ctx context.Context, ownerID, startDate, endDate string) (*Result, error) {
	window, err := ParseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	var (
		expenses []ExpenseRow
		budgets  []BudgetRow
	)
	eg, fctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		expenses, err = g.store.ListExpenseRows(fctx, ownerID, window)
		if err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		budgets, err = g.store.ListBudgetRows(fctx, ownerID)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, &Error{Kind: KindUpstream, Msg: "record store unavailable", Err: err}
	}

	agg := Aggregate(expenses)
	comparisons, warnings := Compare(budgets, agg, window)
	warnings = append(agg.Warnings, warnings...)
	for _, w := range warnings {
		slog.WarnContext(ctx, "Report record defect", "owner_id", ownerID, "defect", w)
	}

	result := &Result{
		TotalExpenses:      agg.Total.InexactFloat64(),
		ExpensesByCategory: make([]CategoryTotal, 0, len(agg.ByCategory)),
		ExpensesByMonth:    make([]MonthTotal, 0, len(agg.ByMonth)),
		BudgetComparison:   make([]BudgetComparison, 0, len(comparisons)),
	}
	for _, ct := range agg.ByCategory {
		result.ExpensesByCategory = append(result.ExpensesByCategory, CategoryTotal{
			Category: ct.Category,
			Amount:   ct.Amount.InexactFloat64(),
		})
	}
	for _, mt := range agg.ByMonth {
		result.ExpensesByMonth = append(result.ExpensesByMonth, MonthTotal{
			Month:  mt.Month,
			Amount: mt.Amount.InexactFloat64(),
		})
	}
	for _, c := range comparisons {
		result.BudgetComparison = append(result.BudgetComparison, BudgetComparison{
			Category:   c.Category,
			Budget:     c.Budget.InexactFloat64(),
			Actual:     c.Actual.InexactFloat64(),
			Difference: c.Difference.InexactFloat64(),
		})
	}

	slog.InfoContext(ctx, "Report generated",
		"owner_id", ownerID,
		"window_start", window.Start.String(),
		"window_end", window.End.String(),
		"expense_rows", len(expenses),
		"budget_rows", len(budgets),
		"defects", len(warnings))

	return result, nil
}
