// Package storage persists expenses, budgets, invitations and month
// snapshots behind a single Repository. Two backends are supported: sqlite
// (embedded, the default) and postgres. Amounts are stored as text so the
// database never rounds a decimal and so the report engine sees rows exactly
// as stored.
package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"bilancio/internal/core"
	"bilancio/internal/report"
)

// Backend selects the database driver.
type Backend string

const (
	SQLite   Backend = "sqlite"
	Postgres Backend = "postgres"
)

// IsValid returns true for a supported backend.
func (b Backend) IsValid() bool {
	return b == SQLite || b == Postgres
}

var ErrNotFound = errors.New("not found")

type Repository struct {
	db      *sql.DB
	backend Backend
}

// New opens the database for the given backend, verifies connectivity and
// runs pending migrations. For sqlite the dsn is a file path whose directory
// is created if missing; for postgres it is a connection URL.
func New(backend Backend, dsn string) (*Repository, error) {
	if !backend.IsValid() {
		return nil, fmt.Errorf("unsupported storage backend: %s", backend)
	}

	driver := "sqlite"
	if backend == Postgres {
		driver = "postgres"
	} else if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", backend, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(backend, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, backend: backend}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// bind rewrites ? placeholders to $n for postgres. Queries in this package
// are written with ? so both backends share one set of SQL.
func (r *Repository) bind(query string) string {
	if r.backend != Postgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(c)
	}
	return sb.String()
}

// newID returns a random 16-hex-char identifier.
func newID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// CreateExpense inserts a validated expense and returns its generated ID.
func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validate expense: %w", err)
	}
	id, err := newID()
	if err != nil {
		return "", err
	}
	_, err = r.db.ExecContext(ctx, r.bind(`
		INSERT INTO expenses (id, owner_id, amount, category, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		id, e.OwnerID, e.Amount.String(), e.Category, e.Date.String(), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"owner_id", e.OwnerID,
		"category", e.Category,
		"amount", e.Amount.String(),
		"date", e.Date.String())

	return id, nil
}

// ListExpenses returns the owner's live expenses, optionally filtered to an
// inclusive date window. Rows whose stored amount or date no longer parses
// are skipped with a warning; listing never fails on a single bad row.
func (r *Repository) ListExpenses(ctx context.Context, ownerID string, window *core.DateRange) ([]core.Expense, error) {
	rows, err := r.listExpenseRows(ctx, ownerID, window)
	if err != nil {
		return nil, err
	}

	expenses := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			slog.WarnContext(ctx, "Skipping expense with unparseable amount", "id", row.ID, "amount", row.Amount)
			continue
		}
		date, err := core.ParseDate(row.Date)
		if err != nil {
			slog.WarnContext(ctx, "Skipping expense with unparseable date", "id", row.ID, "date", row.Date)
			continue
		}
		expenses = append(expenses, core.Expense{
			ID:       row.ID,
			OwnerID:  ownerID,
			Amount:   amount,
			Category: row.Category,
			Date:     date,
		})
	}
	return expenses, nil
}

// SoftDeleteExpense marks the owner's expense as deleted.
func (r *Repository) SoftDeleteExpense(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, r.bind(`
		UPDATE expenses SET deleted_at = ? WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`),
		time.Now().UTC(), id, ownerID)
	if err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListExpenseRows implements report.RecordStore: rows are returned in their
// stored string form, filtered to the inclusive window.
func (r *Repository) ListExpenseRows(ctx context.Context, ownerID string, window core.DateRange) ([]report.ExpenseRow, error) {
	return r.listExpenseRows(ctx, ownerID, &window)
}

// ListAllExpenseRows returns every live expense row for the owner, used by
// the snapshot worker to rebuild month totals.
func (r *Repository) ListAllExpenseRows(ctx context.Context, ownerID string) ([]report.ExpenseRow, error) {
	return r.listExpenseRows(ctx, ownerID, nil)
}

func (r *Repository) listExpenseRows(ctx context.Context, ownerID string, window *core.DateRange) ([]report.ExpenseRow, error) {
	query := `
		SELECT id, amount, category, date
		FROM expenses
		WHERE owner_id = ? AND deleted_at IS NULL`
	args := []any{ownerID}
	if window != nil {
		// Dates are stored YYYY-MM-DD, so lexicographic compare is date order.
		query += ` AND date >= ? AND date <= ?`
		args = append(args, window.Start.String(), window.End.String())
	}
	query += ` ORDER BY date, id`

	rows, err := r.db.QueryContext(ctx, r.bind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []report.ExpenseRow
	for rows.Next() {
		var row report.ExpenseRow
		if err := rows.Scan(&row.ID, &row.Amount, &row.Category, &row.Date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// CreateBudget inserts a validated budget and returns its generated ID. An
// empty period defaults to monthly.
func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (string, error) {
	if b.Period == "" {
		b.Period = core.Monthly
	}
	if err := b.Validate(); err != nil {
		return "", fmt.Errorf("validate budget: %w", err)
	}
	id, err := newID()
	if err != nil {
		return "", err
	}
	_, err = r.db.ExecContext(ctx, r.bind(`
		INSERT INTO budgets (id, owner_id, amount, category, period, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		id, b.OwnerID, b.Amount.String(), b.Category, string(b.Period), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert budget: %w", err)
	}
	return id, nil
}

// ListBudgets returns the owner's budgets as typed records.
func (r *Repository) ListBudgets(ctx context.Context, ownerID string) ([]core.Budget, error) {
	raw, err := r.ListBudgetRows(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	budgets := make([]core.Budget, 0, len(raw))
	for _, row := range raw {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			slog.WarnContext(ctx, "Skipping budget with unparseable amount", "id", row.ID, "amount", row.Amount)
			continue
		}
		budgets = append(budgets, core.Budget{
			ID:       row.ID,
			OwnerID:  ownerID,
			Amount:   amount,
			Category: row.Category,
			Period:   core.Period(row.Period),
		})
	}
	return budgets, nil
}

// ListBudgetRows implements report.RecordStore: all of the owner's budgets,
// in stored string form.
func (r *Repository) ListBudgetRows(ctx context.Context, ownerID string) ([]report.BudgetRow, error) {
	rows, err := r.db.QueryContext(ctx, r.bind(`
		SELECT id, amount, category, period
		FROM budgets
		WHERE owner_id = ?
		ORDER BY created_at, id`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []report.BudgetRow
	for rows.Next() {
		var row report.BudgetRow
		if err := rows.Scan(&row.ID, &row.Amount, &row.Category, &row.Period); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}

// UpdateBudget rewrites the owner's budget amount, category and period.
func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validate budget: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.bind(`
		UPDATE budgets SET amount = ?, category = ?, period = ? WHERE id = ? AND owner_id = ?`),
		b.Amount.String(), b.Category, string(b.Period), b.ID, b.OwnerID)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBudget removes the owner's budget.
func (r *Repository) DeleteBudget(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, r.bind(`
		DELETE FROM budgets WHERE id = ? AND owner_id = ?`), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateInvitation stores a pending invitation.
func (r *Repository) CreateInvitation(ctx context.Context, inv core.Invitation) error {
	_, err := r.db.ExecContext(ctx, r.bind(`
		INSERT INTO invitations (id, owner_id, email, token, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		inv.ID, inv.OwnerID, inv.Email, inv.Token, inv.Status, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

// ListInvitations returns the owner's invitations, newest first.
func (r *Repository) ListInvitations(ctx context.Context, ownerID string) ([]core.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, r.bind(`
		SELECT id, owner_id, email, token, status, created_at
		FROM invitations
		WHERE owner_id = ?
		ORDER BY created_at DESC`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("query invitations: %w", err)
	}
	defer rows.Close()

	var out []core.Invitation
	for rows.Next() {
		var inv core.Invitation
		if err := rows.Scan(&inv.ID, &inv.OwnerID, &inv.Email, &inv.Token, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return out, nil
}

// AcceptInvitation flips a pending invitation to accepted by its token.
func (r *Repository) AcceptInvitation(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, r.bind(`
		UPDATE invitations SET status = 'accepted', accepted_at = ?
		WHERE token = ? AND status = 'pending'`),
		time.Now().UTC(), token)
	if err != nil {
		return fmt.Errorf("accept invitation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceMonthSnapshots atomically rewrites the owner's denormalized month
// totals. The worker calls this after every expense event, so the operation
// must be idempotent.
func (r *Repository) ReplaceMonthSnapshots(ctx context.Context, ownerID string, totals []report.MonthAmount) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.bind(`DELETE FROM month_snapshots WHERE owner_id = ?`), ownerID); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	now := time.Now().UTC()
	for _, mt := range totals {
		_, err := tx.ExecContext(ctx, r.bind(`
			INSERT INTO month_snapshots (owner_id, month, total, updated_at)
			VALUES (?, ?, ?, ?)`),
			ownerID, mt.Month, mt.Amount.String(), now)
		if err != nil {
			return fmt.Errorf("insert snapshot %s: %w", mt.Month, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshots: %w", err)
	}
	return nil
}

// ListMonthSnapshots returns the owner's denormalized month totals in
// ascending month order.
func (r *Repository) ListMonthSnapshots(ctx context.Context, ownerID string) ([]report.MonthAmount, error) {
	rows, err := r.db.QueryContext(ctx, r.bind(`
		SELECT month, total FROM month_snapshots WHERE owner_id = ? ORDER BY month`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []report.MonthAmount
	for rows.Next() {
		var month, raw string
		if err := rows.Scan(&month, &raw); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		total, err := decimal.NewFromString(raw)
		if err != nil {
			slog.WarnContext(ctx, "Skipping snapshot with unparseable total", "month", month, "total", raw)
			continue
		}
		out = append(out, report.MonthAmount{Month: month, Amount: total})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// GetMonthSnapshot returns the denormalized total for one month key, or
// ErrNotFound when the worker has not produced one yet.
func (r *Repository) GetMonthSnapshot(ctx context.Context, ownerID, month string) (decimal.Decimal, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, r.bind(`
		SELECT total FROM month_snapshots WHERE owner_id = ? AND month = ?`),
		ownerID, month).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("query snapshot: %w", err)
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse snapshot total %q: %w", raw, err)
	}
	return total, nil
}
