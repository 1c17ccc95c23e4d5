package http

import (
	"log/slog"
	"net/http"

	"bilancio/internal/report"
)

// DashboardView is the cached month-by-month spending overview. It is built
// from the worker-maintained snapshots, not from live expense rows, so
// serving it never touches the expenses table.
type DashboardView struct {
	Months       []report.MonthTotal `json:"months"`
	TotalTracked float64             `json:"totalTracked"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID := OwnerFromContext(r.Context())

	if view, ok := s.dashCache.Get(ownerID); ok {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "owner_id", ownerID)
		writeJSON(w, http.StatusOK, view)
		return
	}

	snapshots, err := s.snapshots.ListMonthSnapshots(r.Context(), ownerID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to read month snapshots", "error", err, "owner_id", ownerID)
		writeError(w, http.StatusInternalServerError, "could not load dashboard")
		return
	}

	view := DashboardView{Months: make([]report.MonthTotal, 0, len(snapshots))}
	for _, snap := range snapshots {
		amount := snap.Amount.InexactFloat64()
		view.Months = append(view.Months, report.MonthTotal{Month: snap.Month, Amount: amount})
		view.TotalTracked += amount
	}

	s.dashCache.Set(ownerID, view)
	writeJSON(w, http.StatusOK, view)
}
