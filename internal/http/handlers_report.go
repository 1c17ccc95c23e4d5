package http

import (
	"errors"
	"log/slog"
	"net/http"

	"bilancio/internal/report"
)

// handleReportSummary serves the budget-vs-actual report. Validation
// failures are the caller's fault and map to 400; a record store failure is
// ours and maps to 500.
func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	ownerID := OwnerFromContext(r.Context())

	query := r.URL.Query()
	result, err := s.reports.Summary(r.Context(), ownerID, query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		var repErr *report.Error
		if errors.As(err, &repErr) && repErr.Kind.IsCallerError() {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": repErr.Msg,
				"kind":  string(repErr.Kind),
			})
			return
		}
		slog.ErrorContext(r.Context(), "Failed to generate report",
			"error", err,
			"owner_id", ownerID,
			"start_date", query.Get("startDate"),
			"end_date", query.Get("endDate"))
		writeError(w, http.StatusInternalServerError, "could not generate report")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
