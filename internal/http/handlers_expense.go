package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

type expenseRequest struct {
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Date     string      `json:"date"`
}

type expenseResponse struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateExpense(w, r)
	case http.MethodGet:
		s.handleListExpenses(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerFromContext(r.Context())

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	expense := core.Expense{
		OwnerID:  ownerID,
		Amount:   amount,
		Category: strings.TrimSpace(req.Category),
		Date:     date,
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.expenses.CreateExpense(r.Context(), expense)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save expense",
			"error", err,
			"owner_id", ownerID,
			"category", expense.Category)
		writeError(w, http.StatusInternalServerError, "could not save expense")
		return
	}

	s.dashCache.Delete(ownerID)

	writeJSON(w, http.StatusCreated, expenseResponse{
		ID:       id,
		Amount:   expense.Amount.InexactFloat64(),
		Category: expense.Category,
		Date:     expense.Date.String(),
	})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerFromContext(r.Context())

	var window *core.DateRange
	start := strings.TrimSpace(r.URL.Query().Get("startDate"))
	end := strings.TrimSpace(r.URL.Query().Get("endDate"))
	if start != "" || end != "" {
		startDate, err := core.ParseDate(start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid startDate, expected YYYY-MM-DD")
			return
		}
		endDate, err := core.ParseDate(end)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid endDate, expected YYYY-MM-DD")
			return
		}
		if endDate.Before(startDate.Time) {
			writeError(w, http.StatusBadRequest, "endDate precedes startDate")
			return
		}
		window = &core.DateRange{Start: startDate, End: endDate}
	}

	expenses, err := s.expenses.ListExpenses(r.Context(), ownerID, window)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err, "owner_id", ownerID)
		writeError(w, http.StatusInternalServerError, "could not list expenses")
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseResponse{
			ID:       e.ID,
			Amount:   e.Amount.InexactFloat64(),
			Category: e.Category,
			Date:     e.Date.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID := OwnerFromContext(r.Context())

	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "invalid request body, expected {\"id\": ...}")
		return
	}

	if err := s.expenses.DeleteExpense(r.Context(), ownerID, req.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete expense",
			"error", err,
			"owner_id", ownerID,
			"expense_id", req.ID)
		writeError(w, http.StatusInternalServerError, "could not delete expense")
		return
	}

	s.dashCache.Delete(ownerID)
	w.WriteHeader(http.StatusNoContent)
}
