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

type budgetRequest struct {
	ID       string      `json:"id,omitempty"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Period   string      `json:"period"`
}

type budgetResponse struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Period   string  `json:"period"`
}

// budgetFromRequest builds a validated budget. An empty period defaults to
// monthly.
func budgetFromRequest(ownerID string, req budgetRequest) (core.Budget, error) {
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		return core.Budget{}, core.ErrInvalidAmount
	}

	period := core.Period(strings.TrimSpace(req.Period))
	if period == "" {
		period = core.Monthly
	}

	b := core.Budget{
		ID:       req.ID,
		OwnerID:  ownerID,
		Amount:   amount,
		Category: strings.TrimSpace(req.Category),
		Period:   period,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateBudget(w, r)
	case http.MethodGet:
		s.handleListBudgets(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerFromContext(r.Context())

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	budget, err := budgetFromRequest(ownerID, req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.budgets.CreateBudget(r.Context(), budget)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save budget",
			"error", err,
			"owner_id", ownerID,
			"category", budget.Category)
		writeError(w, http.StatusInternalServerError, "could not save budget")
		return
	}

	writeJSON(w, http.StatusCreated, budgetResponse{
		ID:       id,
		Amount:   budget.Amount.InexactFloat64(),
		Category: budget.Category,
		Period:   string(budget.Period),
	})
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	ownerID := OwnerFromContext(r.Context())

	budgets, err := s.budgets.ListBudgets(r.Context(), ownerID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list budgets", "error", err, "owner_id", ownerID)
		writeError(w, http.StatusInternalServerError, "could not list budgets")
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, budgetResponse{
			ID:       b.ID,
			Amount:   b.Amount.InexactFloat64(),
			Category: b.Category,
			Period:   string(b.Period),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID := OwnerFromContext(r.Context())

	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.ID) == "" {
		writeError(w, http.StatusBadRequest, "invalid request body, id is required")
		return
	}

	budget, err := budgetFromRequest(ownerID, req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.budgets.UpdateBudget(r.Context(), budget); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "budget not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update budget",
			"error", err,
			"owner_id", ownerID,
			"budget_id", budget.ID)
		writeError(w, http.StatusInternalServerError, "could not update budget")
		return
	}

	writeJSON(w, http.StatusOK, budgetResponse{
		ID:       budget.ID,
		Amount:   budget.Amount.InexactFloat64(),
		Category: budget.Category,
		Period:   string(budget.Period),
	})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
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

	if err := s.budgets.DeleteBudget(r.Context(), ownerID, req.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "budget not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete budget",
			"error", err,
			"owner_id", ownerID,
			"budget_id", req.ID)
		writeError(w, http.StatusInternalServerError, "could not delete budget")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
