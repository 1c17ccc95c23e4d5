package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain date", "2024-01-05", "2024-01-05", true},
		{"trimmed", " 2024-01-05 ", "2024-01-05", true},
		{"rfc3339 truncated", "2024-01-05T14:30:00Z", "2024-01-05", true},
		{"garbage", "yesterday", "", false},
		{"bad month", "2024-13-01", "", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.ok {
				if err != nil {
					t.Fatalf("ParseDate(%q) error: %v", tt.in, err)
				}
				if got.String() != tt.want {
					t.Fatalf("ParseDate(%q) = %s, want %s", tt.in, got, tt.want)
				}
			} else if err == nil {
				t.Fatalf("ParseDate(%q) expected error", tt.in)
			}
		})
	}
}

func TestDateMonthKey(t *testing.T) {
	d := NewDate(2024, 2, 29)
	if got := d.MonthKey(); got != "2024-02" {
		t.Errorf("MonthKey() = %q, want 2024-02", got)
	}
}

func TestDateRange(t *testing.T) {
	r := DateRange{Start: NewDate(2024, 1, 1), End: NewDate(2024, 1, 8)}
	if got := r.Days(); got != 7 {
		t.Errorf("Days() = %d, want 7", got)
	}
	if !r.Contains(NewDate(2024, 1, 1)) || !r.Contains(NewDate(2024, 1, 8)) {
		t.Error("range should include both endpoints")
	}
	if r.Contains(NewDate(2024, 1, 9)) {
		t.Error("range should exclude dates after end")
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		OwnerID:  "u1",
		Amount:   decimal.RequireFromString("12.50"),
		Category: "Food",
		Date:     NewDate(2024, 1, 5),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Expense)
		want   error
	}{
		{"missing owner", func(e *Expense) { e.OwnerID = " " }, ErrEmptyOwner},
		{"zero date", func(e *Expense) { e.Date = Date{} }, ErrZeroDate},
		{"empty category", func(e *Expense) { e.Category = "" }, ErrEmptyCategory},
		{"zero amount", func(e *Expense) { e.Amount = decimal.Zero }, ErrInvalidAmount},
		{"sub-cent amount", func(e *Expense) { e.Amount = decimal.RequireFromString("0.001") }, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			if err := e.Validate(); err != tt.want {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	valid := Budget{
		OwnerID:  "u1",
		Amount:   decimal.RequireFromString("100"),
		Category: "Food",
		Period:   Monthly,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}

	zero := valid
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Errorf("zero-amount budget should be allowed, got %v", err)
	}

	neg := valid
	neg.Amount = decimal.RequireFromString("-5")
	if err := neg.Validate(); err != ErrInvalidAmount {
		t.Errorf("negative budget: got %v, want ErrInvalidAmount", err)
	}

	bad := valid
	bad.Period = "biannual"
	if err := bad.Validate(); err != ErrInvalidPeriod {
		t.Errorf("unknown period: got %v, want ErrInvalidPeriod", err)
	}
}

func TestPeriodIsValid(t *testing.T) {
	for _, p := range []Period{Weekly, Monthly, Quarterly, Yearly} {
		if !p.IsValid() {
			t.Errorf("%s should be valid", p)
		}
	}
	if Period("daily").IsValid() {
		t.Error("daily is not a budget period")
	}
}
