package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Weekly    Period = "weekly"
	Monthly   Period = "monthly"
	Quarterly Period = "quarterly"
	Yearly    Period = "yearly"
)

// DateLayout is the canonical wire format for calendar dates.
const DateLayout = "2006-01-02"

type (
	// Period is the recurrence interval of a budget.
	Period string

	// Date is a calendar date with no meaningful time-of-day component.
	Date struct {
		time.Time
	}

	// DateRange is an inclusive [Start, End] reporting window.
	DateRange struct {
		Start Date
		End   Date
	}

	Expense struct {
		ID       string
		OwnerID  string
		Amount   decimal.Decimal
		Category string
		Date     Date
	}

	Budget struct {
		ID       string
		OwnerID  string
		Amount   decimal.Decimal
		Category string
		Period   Period
	}

	Invitation struct {
		ID         string
		OwnerID    string
		Email      string
		Token      string
		Status     string
		CreatedAt  time.Time
		AcceptedAt time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyOwner    = errors.New("empty owner")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyEmail    = errors.New("empty email")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrZeroDate      = errors.New("date cannot be zero")
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date, accepting either the canonical
// YYYY-MM-DD form or a full RFC 3339 timestamp (the time part is dropped).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}.Truncate(), nil
}

// Truncate drops the time-of-day component.
func (d Date) Truncate() Date {
	y, m, day := d.Date()
	return Date{Time: time.Date(y, m, day, 0, 0, 0, 0, time.UTC)}
}

// MonthKey returns the YYYY-MM grouping key for the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// Days returns the number of whole days between Start and End.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start.Time).Hours() / 24)
}

// Contains reports whether d falls inside the inclusive range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// IsValid returns true for the recognized recurrence periods.
func (p Period) IsValid() bool {
	switch p {
	case Weekly, Monthly, Quarterly, Yearly:
		return true
	default:
		return false
	}
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	// Smallest representable expense is one cent.
	if e.Amount.LessThan(decimal.New(1, -2)) {
		return ErrInvalidAmount
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !b.Period.IsValid() {
		return ErrInvalidPeriod
	}
	return nil
}

func (i Invitation) Validate() error {
	if strings.TrimSpace(i.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if !strings.Contains(i.Email, "@") {
		return ErrEmptyEmail
	}
	return nil
}
