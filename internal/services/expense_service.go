// Package services orchestrates storage and messaging behind the HTTP
// handlers and the worker.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
)

// ExpenseStore is the slice of the repository the expense service needs.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (string, error)
	ListExpenses(ctx context.Context, ownerID string, window *core.DateRange) ([]core.Expense, error)
	SoftDeleteExpense(ctx context.Context, ownerID, id string) error
}

// EventPublisher announces expense changes to the snapshot worker.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, id, ownerID, action string) error
}

// ExpenseService saves expenses and publishes change events. Publishing is
// best effort: the database write is the source of truth and a broker outage
// must not fail the request.
type ExpenseService struct {
	store     ExpenseStore
	publisher EventPublisher
}

func NewExpenseService(store ExpenseStore, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
	}
}

// CreateExpense saves the expense and publishes a created event.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}

	if err := s.publish(ctx, id, e.OwnerID, amqp.ActionCreated); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", id, "action", amqp.ActionCreated, "error", err)
		// The expense is saved; the worker will catch up on the next event.
	}

	return id, nil
}

// ListExpenses returns the owner's expenses, optionally windowed.
func (s *ExpenseService) ListExpenses(ctx context.Context, ownerID string, window *core.DateRange) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, ownerID, window)
}

// DeleteExpense soft deletes the expense and publishes a deleted event.
func (s *ExpenseService) DeleteExpense(ctx context.Context, ownerID, id string) error {
	if err := s.store.SoftDeleteExpense(ctx, ownerID, id); err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}

	if err := s.publish(ctx, id, ownerID, amqp.ActionDeleted); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", id, "action", amqp.ActionDeleted, "error", err)
	}

	return nil
}

func (s *ExpenseService) publish(ctx context.Context, id, ownerID, action string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping expense event")
		return nil
	}
	return s.publisher.PublishExpenseEvent(ctx, id, ownerID, action)
}
