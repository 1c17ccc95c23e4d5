package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// FallbackCategory is assigned to expense rows with a missing category.
const FallbackCategory = "other"

type (
	// ExpenseRow is an expense as the record store hands it over: amount and
	// date still in their stored string form so that defective rows reach the
	// aggregator instead of failing the fetch.
	ExpenseRow struct {
		ID       string
		Amount   string
		Category string
		Date     string
	}

	// CategoryAmount is a running total for one category label.
	CategoryAmount struct {
		Category string
		Amount   decimal.Decimal
	}

	// MonthAmount is a running total for one YYYY-MM month key.
	MonthAmount struct {
		Month  string
		Amount decimal.Decimal
	}

	// Aggregation holds the reduced expense set. Slice order is first-seen
	// order; consumers must not rely on it being sorted.
	Aggregation struct {
		Total      decimal.Decimal
		ByCategory []CategoryAmount
		ByMonth    []MonthAmount
		Warnings   []string
	}
)

// ActualFor returns the aggregated total for a category, or zero if the
// category had no expenses in the window. Matching is exact and
// case-sensitive.
func (a Aggregation) ActualFor(category string) decimal.Decimal {
	for _, ct := range a.ByCategory {
		if ct.Category == category {
			return ct.Amount
		}
	}
	return decimal.Zero
}

// Aggregate reduces the expense rows into a total, per-category totals and
// per-month totals in a single pass. A row whose amount or date does not
// parse is skipped and noted as a warning; it never fails the whole report.
func Aggregate(rows []ExpenseRow) Aggregation {
	agg := Aggregation{Total: decimal.Zero}
	catIdx := make(map[string]int)
	monthIdx := make(map[string]int)

	for _, row := range rows {
		amount, err := core.ParseAmount(row.Amount)
		if err != nil {
			agg.Warnings = append(agg.Warnings, fmt.Sprintf("expense %s: unparseable amount %q", row.ID, row.Amount))
			continue
		}
		date, err := core.ParseDate(row.Date)
		if err != nil {
			agg.Warnings = append(agg.Warnings, fmt.Sprintf("expense %s: unparseable date %q", row.ID, row.Date))
			continue
		}

		category := strings.TrimSpace(row.Category)
		if category == "" {
			category = FallbackCategory
		}

		agg.Total = agg.Total.Add(amount)

		if i, ok := catIdx[category]; ok {
			agg.ByCategory[i].Amount = agg.ByCategory[i].Amount.Add(amount)
		} else {
			catIdx[category] = len(agg.ByCategory)
			agg.ByCategory = append(agg.ByCategory, CategoryAmount{Category: category, Amount: amount})
		}

		// Month comes from the record's own date, not clipped to the window.
		month := date.MonthKey()
		if i, ok := monthIdx[month]; ok {
			agg.ByMonth[i].Amount = agg.ByMonth[i].Amount.Add(amount)
		} else {
			monthIdx[month] = len(agg.ByMonth)
			agg.ByMonth = append(agg.ByMonth, MonthAmount{Month: month, Amount: amount})
		}
	}

	return agg
}
