package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/username/tradevault/backend/src/logger"
	"github.com/username/tradevault/backend/src/model"
	"github.com/username/tradevault/backend/src/services"
)

// ReportHandler serves the monthly performance report endpoint.
type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// HandleGetMonthlyReport serves GET /api/reports/monthly?month=YYYY-MM with an
// optional account_id filter; account_id 0 or absent aggregates all accounts.
func (h *ReportHandler) HandleGetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	month := r.URL.Query().Get("month")
	if month == "" {
		sendJSONError(w, "Query parameter 'month' is required (YYYY-MM)", http.StatusBadRequest)
		return
	}

	var accountID int64
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			sendJSONError(w, "Invalid account_id", http.StatusBadRequest)
			return
		}
		accountID = parsed
	}

	reportData, err := h.reportService.GetMonthlyReport(userID, accountID, month)
	if err != nil {
		if errors.Is(err, services.ErrInvalidMonth) {
			sendJSONError(w, "Invalid month, expected YYYY-MM", http.StatusBadRequest)
			return
		}
		if errors.Is(err, model.ErrAccountNotFound) {
			sendJSONError(w, "Account not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to compute monthly report", "month", month, "error", err)
		sendJSONError(w, "Failed to compute monthly report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reportData)
}
