package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func window(sy, sm, sd, ey, em, ed int) core.DateRange {
	return core.DateRange{Start: core.NewDate(sy, sm, sd), End: core.NewDate(ey, em, ed)}
}

func TestPeriodCount(t *testing.T) {
	tests := []struct {
		name   string
		period core.Period
		window core.DateRange
		want   int
	}{
		{"monthly inside one month", core.Monthly, window(2024, 1, 5, 2024, 1, 25), 1},
		{"monthly two calendar months", core.Monthly, window(2024, 1, 1, 2024, 2, 29), 2},
		{"monthly partial months count whole", core.Monthly, window(2024, 1, 31, 2024, 2, 1), 2},
		{"monthly full year", core.Monthly, window(2024, 1, 1, 2024, 12, 31), 12},
		{"monthly across year boundary", core.Monthly, window(2023, 12, 15, 2024, 1, 15), 2},
		{"weekly one day", core.Weekly, window(2024, 1, 1, 2024, 1, 1), 1},
		{"weekly exactly seven days", core.Weekly, window(2024, 1, 1, 2024, 1, 8), 1},
		{"weekly eight days rounds up", core.Weekly, window(2024, 1, 1, 2024, 1, 9), 2},
		{"weekly four weeks", core.Weekly, window(2024, 1, 1, 2024, 1, 29), 4},
		{"quarterly inside one quarter", core.Quarterly, window(2024, 1, 1, 2024, 3, 31), 1},
		{"quarterly four months rounds up", core.Quarterly, window(2024, 1, 1, 2024, 4, 30), 2},
		{"quarterly full year", core.Quarterly, window(2024, 1, 1, 2024, 12, 31), 4},
		{"yearly same year", core.Yearly, window(2024, 1, 1, 2024, 12, 31), 1},
		{"yearly anniversary reached", core.Yearly, window(2023, 3, 10, 2024, 3, 10), 2},
		{"yearly anniversary not reached", core.Yearly, window(2023, 3, 10, 2024, 3, 9), 1},
		{"yearly end month before start month", core.Yearly, window(2023, 6, 1, 2024, 2, 1), 1},
		{"yearly end month after start month", core.Yearly, window(2023, 2, 1, 2024, 6, 1), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PeriodCount(tt.period, tt.window)
			if !ok {
				t.Fatalf("PeriodCount(%s) reported unrecognized period", tt.period)
			}
			if got != tt.want {
				t.Errorf("PeriodCount(%s, %s..%s) = %d, want %d",
					tt.period, tt.window.Start, tt.window.End, got, tt.want)
			}
		})
	}
}

func TestPeriodCountUnrecognized(t *testing.T) {
	count, ok := PeriodCount("biannual", window(2024, 1, 1, 2024, 12, 31))
	if ok {
		t.Fatal("biannual should be unrecognized")
	}
	if count != 1 {
		t.Errorf("unrecognized period count = %d, want 1", count)
	}
}

func TestNormalizeBudgetMonthlyIdempotentInsideOneMonth(t *testing.T) {
	amount := decimal.RequireFromString("123.45")
	got, ok := NormalizeBudget(amount, core.Monthly, window(2024, 5, 3, 2024, 5, 28))
	if !ok || !got.Equal(amount) {
		t.Errorf("one-month window should leave a monthly budget unchanged, got %s", got)
	}
}

func TestNormalizeBudgetScalesByMonths(t *testing.T) {
	amount := decimal.RequireFromString("100")
	got, ok := NormalizeBudget(amount, core.Monthly, window(2024, 1, 10, 2024, 4, 10))
	if !ok || got.String() != "400" {
		t.Errorf("four-month window: got %s, want 400", got)
	}
}

func TestNormalizeBudgetUnrecognizedPeriodUnscaled(t *testing.T) {
	amount := decimal.RequireFromString("50")
	got, ok := NormalizeBudget(amount, "biannual", window(2020, 1, 1, 2024, 12, 31))
	if ok {
		t.Error("biannual should report unrecognized")
	}
	if !got.Equal(amount) {
		t.Errorf("unrecognized period must not scale: got %s, want 50", got)
	}
}

func TestNormalizeBudgetWeeklyNeverBelowOne(t *testing.T) {
	amount := decimal.RequireFromString("25")
	got, ok := NormalizeBudget(amount, core.Weekly, window(2024, 1, 1, 2024, 1, 1))
	if !ok || !got.Equal(amount) {
		t.Errorf("one-day window must scale by 1, got %s", got)
	}
}
