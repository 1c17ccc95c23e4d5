package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/report"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(SQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustCreateExpense(t *testing.T, repo *Repository, owner, category, amount string, date core.Date) string {
	t.Helper()
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("parse amount %q: %v", amount, err)
	}
	id, err := repo.CreateExpense(context.Background(), core.Expense{
		OwnerID:  owner,
		Amount:   amt,
		Category: category,
		Date:     date,
	})
	if err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}
	return id
}

func TestBackendIsValid(t *testing.T) {
	tests := []struct {
		backend Backend
		want    bool
	}{
		{SQLite, true},
		{Postgres, true},
		{Backend("mysql"), false},
		{Backend(""), false},
	}
	for _, tt := range tests {
		if got := tt.backend.IsValid(); got != tt.want {
			t.Errorf("Backend(%q).IsValid() = %v, want %v", tt.backend, got, tt.want)
		}
	}
}

func TestBindRewritesPlaceholdersForPostgres(t *testing.T) {
	r := &Repository{backend: Postgres}
	got := r.bind(`SELECT * FROM t WHERE a = ? AND b = ?`)
	want := `SELECT * FROM t WHERE a = $1 AND b = $2`
	if got != want {
		t.Errorf("bind() = %q, want %q", got, want)
	}

	r = &Repository{backend: SQLite}
	q := `SELECT * FROM t WHERE a = ?`
	if got := r.bind(q); got != q {
		t.Errorf("bind() on sqlite = %q, want unchanged", got)
	}
}

func TestCreateExpenseValidates(t *testing.T) {
	repo := newTestRepo(t)

	tests := []struct {
		name    string
		expense core.Expense
	}{
		{"empty owner", core.Expense{Category: "food", Amount: decimal.NewFromInt(10), Date: core.NewDate(2025, 1, 1)}},
		{"empty category", core.Expense{OwnerID: "u1", Amount: decimal.NewFromInt(10), Date: core.NewDate(2025, 1, 1)}},
		{"zero amount", core.Expense{OwnerID: "u1", Category: "food", Date: core.NewDate(2025, 1, 1)}},
		{"zero date", core.Expense{OwnerID: "u1", Category: "food", Amount: decimal.NewFromInt(10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.CreateExpense(context.Background(), tt.expense); err == nil {
				t.Error("CreateExpense() expected error, got nil")
			}
		})
	}
}

func TestListExpensesWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreateExpense(t, repo, "u1", "food", "10.50", core.NewDate(2025, 1, 15))
	mustCreateExpense(t, repo, "u1", "transport", "20", core.NewDate(2025, 2, 1))
	mustCreateExpense(t, repo, "u1", "food", "5", core.NewDate(2025, 3, 10))
	mustCreateExpense(t, repo, "u2", "food", "99", core.NewDate(2025, 2, 1))

	all, err := repo.ListExpenses(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListExpenses() returned %d expenses, want 3", len(all))
	}

	// Window bounds are inclusive on both ends.
	window := core.DateRange{Start: core.NewDate(2025, 2, 1), End: core.NewDate(2025, 3, 10)}
	filtered, err := repo.ListExpenses(ctx, "u1", &window)
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("ListExpenses() in window returned %d expenses, want 2", len(filtered))
	}
	if !filtered[0].Amount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("first windowed expense amount = %s, want 20", filtered[0].Amount)
	}
}

func TestListExpenseRowsKeepsStoredForm(t *testing.T) {
	repo := newTestRepo(t)

	mustCreateExpense(t, repo, "u1", "food", "10.50", core.NewDate(2025, 1, 15))

	window := core.DateRange{Start: core.NewDate(2025, 1, 1), End: core.NewDate(2025, 1, 31)}
	rows, err := repo.ListExpenseRows(context.Background(), "u1", window)
	if err != nil {
		t.Fatalf("ListExpenseRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("ListExpenseRows() returned %d rows, want 1", len(rows))
	}
	if rows[0].Amount != "10.5" && rows[0].Amount != "10.50" {
		t.Errorf("row amount = %q, want decimal string form", rows[0].Amount)
	}
	if rows[0].Date != "2025-01-15" {
		t.Errorf("row date = %q, want 2025-01-15", rows[0].Date)
	}
}

func TestSoftDeleteExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id := mustCreateExpense(t, repo, "u1", "food", "10", core.NewDate(2025, 1, 15))

	if err := repo.SoftDeleteExpense(ctx, "u1", id); err != nil {
		t.Fatalf("SoftDeleteExpense() error = %v", err)
	}

	remaining, err := repo.ListExpenses(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("ListExpenses() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected soft-deleted expense to be hidden, got %d rows", len(remaining))
	}

	// Deleting again, or deleting someone else's expense, is not found.
	if err := repo.SoftDeleteExpense(ctx, "u1", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
	id2 := mustCreateExpense(t, repo, "u1", "food", "10", core.NewDate(2025, 1, 16))
	if err := repo.SoftDeleteExpense(ctx, "u2", id2); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner delete error = %v, want ErrNotFound", err)
	}
}

func TestBudgetLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateBudget(ctx, core.Budget{
		OwnerID:  "u1",
		Amount:   decimal.NewFromInt(200),
		Category: "food",
	})
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}

	budgets, err := repo.ListBudgets(ctx, "u1")
	if err != nil {
		t.Fatalf("ListBudgets() error = %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("ListBudgets() returned %d budgets, want 1", len(budgets))
	}
	if budgets[0].Period != core.Monthly {
		t.Errorf("empty period should default to monthly, got %q", budgets[0].Period)
	}

	err = repo.UpdateBudget(ctx, core.Budget{
		ID:       id,
		OwnerID:  "u1",
		Amount:   decimal.NewFromInt(300),
		Category: "groceries",
		Period:   core.Quarterly,
	})
	if err != nil {
		t.Fatalf("UpdateBudget() error = %v", err)
	}

	budgets, err = repo.ListBudgets(ctx, "u1")
	if err != nil {
		t.Fatalf("ListBudgets() error = %v", err)
	}
	if budgets[0].Category != "groceries" || budgets[0].Period != core.Quarterly {
		t.Errorf("update not applied: got %+v", budgets[0])
	}
	if !budgets[0].Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("updated amount = %s, want 300", budgets[0].Amount)
	}

	if err := repo.DeleteBudget(ctx, "u1", id); err != nil {
		t.Fatalf("DeleteBudget() error = %v", err)
	}
	if err := repo.DeleteBudget(ctx, "u1", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestInvitationLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	inv := core.Invitation{
		ID:        "inv1",
		OwnerID:   "u1",
		Email:     "friend@example.com",
		Token:     "tok-abc",
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateInvitation(ctx, inv); err != nil {
		t.Fatalf("CreateInvitation() error = %v", err)
	}

	list, err := repo.ListInvitations(ctx, "u1")
	if err != nil {
		t.Fatalf("ListInvitations() error = %v", err)
	}
	if len(list) != 1 || list[0].Email != "friend@example.com" {
		t.Fatalf("ListInvitations() = %+v, want one pending invitation", list)
	}

	if err := repo.AcceptInvitation(ctx, "tok-abc"); err != nil {
		t.Fatalf("AcceptInvitation() error = %v", err)
	}
	list, _ = repo.ListInvitations(ctx, "u1")
	if list[0].Status != "accepted" {
		t.Errorf("status after accept = %q, want accepted", list[0].Status)
	}

	// A token is single-use.
	if err := repo.AcceptInvitation(ctx, "tok-abc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second accept error = %v, want ErrNotFound", err)
	}
	if err := repo.AcceptInvitation(ctx, "no-such-token"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown token error = %v, want ErrNotFound", err)
	}
}

func TestMonthSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	totals := []report.MonthAmount{
		{Month: "2025-01", Amount: decimal.NewFromInt(70)},
		{Month: "2025-02", Amount: decimal.NewFromInt(30)},
	}
	if err := repo.ReplaceMonthSnapshots(ctx, "u1", totals); err != nil {
		t.Fatalf("ReplaceMonthSnapshots() error = %v", err)
	}

	got, err := repo.GetMonthSnapshot(ctx, "u1", "2025-01")
	if err != nil {
		t.Fatalf("GetMonthSnapshot() error = %v", err)
	}
	if !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("snapshot total = %s, want 70", got)
	}

	all, err := repo.ListMonthSnapshots(ctx, "u1")
	if err != nil {
		t.Fatalf("ListMonthSnapshots() error = %v", err)
	}
	if len(all) != 2 || all[0].Month != "2025-01" || all[1].Month != "2025-02" {
		t.Errorf("ListMonthSnapshots() = %v, want two months ascending", all)
	}

	// Replacing rewrites the whole set: stale months disappear.
	if err := repo.ReplaceMonthSnapshots(ctx, "u1", totals[1:]); err != nil {
		t.Fatalf("ReplaceMonthSnapshots() error = %v", err)
	}
	if _, err := repo.GetMonthSnapshot(ctx, "u1", "2025-01"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale month error = %v, want ErrNotFound", err)
	}

	if _, err := repo.GetMonthSnapshot(ctx, "nobody", "2025-01"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing owner error = %v, want ErrNotFound", err)
	}
}
