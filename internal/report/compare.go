package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

type (
	// BudgetRow is a budget as the record store hands it over, amount still
	// in stored string form.
	BudgetRow struct {
		ID       string
		Amount   string
		Category string
		Period   string
	}

	// ComparisonEntry is the variance of one budget against the window's
	// actual spend in its category.
	ComparisonEntry struct {
		Category   string
		Budget     decimal.Decimal
		Actual     decimal.Decimal
		Difference decimal.Decimal
	}
)

// Compare joins every budget the user owns against the aggregated category
// actuals. One entry is emitted per budget row, even when categories repeat.
// Defective rows degrade to defaults (zero amount, unscaled period) or are
// skipped (missing category) with a warning; nothing here aborts the report.
func Compare(budgets []BudgetRow, agg Aggregation, window core.DateRange) ([]ComparisonEntry, []string) {
	var (
		entries  []ComparisonEntry
		warnings []string
	)

	for _, b := range budgets {
		category := strings.TrimSpace(b.Category)
		if category == "" {
			warnings = append(warnings, fmt.Sprintf("budget %s: missing category, skipped", b.ID))
			continue
		}

		amount, err := core.ParseAmount(b.Amount)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("budget %s: unparseable amount %q, treated as zero", b.ID, b.Amount))
			amount = decimal.Zero
		}

		adjusted, ok := NormalizeBudget(amount, core.Period(b.Period), window)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("budget %s: unrecognized period %q, amount left unscaled", b.ID, b.Period))
		}

		actual := agg.ActualFor(category)
		entries = append(entries, ComparisonEntry{
			Category:   category,
			Budget:     adjusted,
			Actual:     actual,
			Difference: adjusted.Sub(actual),
		})
	}

	return entries, warnings
}
