package report

import (
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// PeriodCount returns how many recurrence periods of p the window covers,
// counting partial periods as whole and never returning less than 1. The
// second return value is false when the period is unrecognized.
func PeriodCount(p core.Period, r core.DateRange) (int, bool) {
	switch p {
	case core.Monthly:
		return clampMin1(monthSpan(r)), true
	case core.Weekly:
		days := r.Days()
		return clampMin1((days + 6) / 7), true
	case core.Quarterly:
		months := monthSpan(r)
		return clampMin1((months + 2) / 3), true
	case core.Yearly:
		years := r.End.Year() - r.Start.Year()
		if !endBeforeAnniversary(r) {
			years++
		}
		return clampMin1(years), true
	default:
		return 1, false
	}
}

// NormalizeBudget scales a per-period budget amount onto the reporting
// window. An unrecognized period leaves the amount unscaled; the false
// return lets the caller surface a warning without failing the report.
func NormalizeBudget(amount decimal.Decimal, p core.Period, r core.DateRange) (decimal.Decimal, bool) {
	count, ok := PeriodCount(p, r)
	if !ok {
		return amount, false
	}
	return amount.Mul(decimal.NewFromInt(int64(count))), true
}

// monthSpan counts distinct calendar months touched by the window: both
// bounds are truncated to the first of their month before subtracting, so a
// range inside a single month yields 1.
func monthSpan(r core.DateRange) int {
	start := r.Start.Year()*12 + int(r.Start.Month())
	end := r.End.Year()*12 + int(r.End.Month())
	return end - start + 1
}

// endBeforeAnniversary reports whether the end date falls before the start
// date's month/day anniversary within the end year.
func endBeforeAnniversary(r core.DateRange) bool {
	if r.End.Month() != r.Start.Month() {
		return r.End.Month() < r.Start.Month()
	}
	return r.End.Day() < r.Start.Day()
}

func clampMin1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
