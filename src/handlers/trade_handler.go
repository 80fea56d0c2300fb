package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/username/tradevault/backend/src/config"
	"github.com/username/tradevault/backend/src/database"
	"github.com/username/tradevault/backend/src/logger"
	"github.com/username/tradevault/backend/src/model"
	"github.com/username/tradevault/backend/src/models"
	"github.com/username/tradevault/backend/src/parsers/journal"
	"github.com/username/tradevault/backend/src/report"
	"github.com/username/tradevault/backend/src/security/validation"
	"github.com/username/tradevault/backend/src/services"
)

// TradeHandler serves the trade journal CRUD, review and import endpoints.
type TradeHandler struct {
	reportService services.ReportService
	parser        *journal.Parser
}

func NewTradeHandler(reportService services.ReportService, parser *journal.Parser) *TradeHandler {
	return &TradeHandler{
		reportService: reportService,
		parser:        parser,
	}
}

type tradeRequest struct {
	AccountID  int64    `json:"account_id"`
	OpenedAt   string   `json:"opened_at"`
	Instrument string   `json:"instrument"`
	Direction  string   `json:"direction"`
	Outcome    string   `json:"outcome"`
	PnlAmount  float64  `json:"pnl_amount"`
	PnlPercent float64  `json:"pnl_percent"`
	RiskAmount *float64 `json:"risk_amount"`
	RMultiple  *float64 `json:"r_multiple"`
	Commission *float64 `json:"commission"`
	NetPnl     *float64 `json:"net_pnl"`
	Note       string   `json:"note"`
}

func (req *tradeRequest) validate() (time.Time, error) {
	openedAt, err := validation.ValidateTimestampString(req.OpenedAt, "opened_at")
	if err != nil {
		return time.Time{}, err
	}

	req.Instrument = strings.TrimSpace(req.Instrument)
	if err := validation.ValidateInstrument(req.Instrument); err != nil {
		return time.Time{}, err
	}
	req.Direction = strings.ToUpper(strings.TrimSpace(req.Direction))
	if err := validation.ValidateDirection(req.Direction); err != nil {
		return time.Time{}, err
	}
	req.Outcome = strings.ToUpper(strings.TrimSpace(req.Outcome))
	if err := validation.ValidateOutcome(req.Outcome); err != nil {
		return time.Time{}, err
	}
	req.Note = validation.SanitizeText(validation.StripUnprintable(req.Note))
	if err := validation.ValidateStringMaxLength(req.Note, validation.MaxNoteLength, "Note"); err != nil {
		return time.Time{}, err
	}
	return openedAt, nil
}

func (req *tradeRequest) apply(t *models.Trade, openedAt time.Time) {
	t.AccountID = req.AccountID
	t.OpenedAt = openedAt
	t.Instrument = req.Instrument
	t.Direction = models.Direction(req.Direction)
	t.Outcome = models.Outcome(req.Outcome)
	t.PnlAmount = req.PnlAmount
	t.PnlPercent = req.PnlPercent
	t.RiskAmount = req.RiskAmount
	t.RMultiple = req.RMultiple
	t.Commission = req.Commission
	t.NetPnl = req.NetPnl
	t.Note = req.Note
}

// verifyAccountOwnership rejects trades pointed at another user's account.
func verifyAccountOwnership(userID, accountID int64) error {
	if accountID == 0 {
		return nil
	}
	_, err := model.GetAccountByID(database.DB, accountID, userID)
	return err
}

// HandleListTrades lists the user's trades. Accepts either ?month=YYYY-MM or
// an explicit ?from / ?to RFC3339 range, plus an optional ?account_id filter.
func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
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

	// No range given means everything the user ever journaled.
	start := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Now().AddDate(100, 0, 0)
	if month := r.URL.Query().Get("month"); month != "" {
		var err error
		start, end, err = report.MonthRange(month)
		if err != nil {
			sendJSONError(w, "Invalid month, expected YYYY-MM", http.StatusBadRequest)
			return
		}
	} else {
		if from := r.URL.Query().Get("from"); from != "" {
			parsed, err := time.Parse(time.RFC3339, from)
			if err != nil {
				sendJSONError(w, "Invalid from timestamp", http.StatusBadRequest)
				return
			}
			start = parsed
		}
		if to := r.URL.Query().Get("to"); to != "" {
			parsed, err := time.Parse(time.RFC3339, to)
			if err != nil {
				sendJSONError(w, "Invalid to timestamp", http.StatusBadRequest)
				return
			}
			end = parsed
		}
	}

	trades, err := model.ListTrades(database.DB, userID, accountID, start, end)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to list trades", "error", err)
		sendJSONError(w, "Failed to list trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trades)
}

func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	openedAt, err := req.validate()
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := verifyAccountOwnership(userID, req.AccountID); err != nil {
		sendJSONError(w, "Account not found", http.StatusNotFound)
		return
	}

	trade := &models.Trade{UserID: userID}
	trade.ID = uuid.New().String()
	req.apply(trade, openedAt)

	if err := model.CreateTrade(database.DB, trade); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to create trade", "error", err)
		sendJSONError(w, "Failed to create trade", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)
	logger.InfoFromContext(r.Context(), "Trade created", "tradeID", trade.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(trade)
}

func (h *TradeHandler) HandleGetTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	trade, err := model.GetTradeByID(database.DB, chi.URLParam(r, "id"), userID)
	if err != nil {
		if errors.Is(err, model.ErrTradeNotFound) {
			sendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to get trade", "error", err)
		sendJSONError(w, "Failed to get trade", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trade)
}

func (h *TradeHandler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	tradeID := chi.URLParam(r, "id")
	trade, err := model.GetTradeByID(database.DB, tradeID, userID)
	if err != nil {
		if errors.Is(err, model.ErrTradeNotFound) {
			sendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to get trade for update", "tradeID", tradeID, "error", err)
		sendJSONError(w, "Failed to update trade", http.StatusInternalServerError)
		return
	}

	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	openedAt, err := req.validate()
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := verifyAccountOwnership(userID, req.AccountID); err != nil {
		sendJSONError(w, "Account not found", http.StatusNotFound)
		return
	}

	req.apply(trade, openedAt)

	if err := model.UpdateTrade(database.DB, trade); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to update trade", "tradeID", tradeID, "error", err)
		sendJSONError(w, "Failed to update trade", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trade)
}

func (h *TradeHandler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	tradeID := chi.URLParam(r, "id")
	if err := model.DeleteTrade(database.DB, tradeID, userID); err != nil {
		if errors.Is(err, model.ErrTradeNotFound) {
			sendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to delete trade", "tradeID", tradeID, "error", err)
		sendJSONError(w, "Failed to delete trade", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)
	logger.InfoFromContext(r.Context(), "Trade deleted", "tradeID", tradeID)

	w.WriteHeader(http.StatusNoContent)
}

// HandleReviewTrade marks a trade as reviewed, optionally attaching the
// commission and net pnl figures that only become known after review.
func (h *TradeHandler) HandleReviewTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	tradeID := chi.URLParam(r, "id")

	var req struct {
		Commission *float64 `json:"commission"`
		NetPnl     *float64 `json:"net_pnl"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			sendJSONError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	if err := model.MarkTradeReviewed(database.DB, tradeID, userID, req.Commission, req.NetPnl, time.Now().UTC()); err != nil {
		if errors.Is(err, model.ErrTradeNotFound) {
			sendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to mark trade reviewed", "tradeID", tradeID, "error", err)
		sendJSONError(w, "Failed to review trade", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)
	logger.InfoFromContext(r.Context(), "Trade reviewed", "tradeID", tradeID)

	trade, err := model.GetTradeByID(database.DB, tradeID, userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to reload trade after review", "tradeID", tradeID, "error", err)
		sendJSONError(w, "Failed to review trade", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(trade)
}

// HandleExportTrades streams the user's trades as a journal CSV. The column
// set matches what HandleImportTrades accepts, so exports round-trip.
func (h *TradeHandler) HandleExportTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
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

	start := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Now().AddDate(100, 0, 0)
	trades, err := model.ListTrades(database.DB, userID, accountID, start, end)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to list trades for export", "error", err)
		sendJSONError(w, "Failed to export trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trades.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"opened_at", "instrument", "direction", "outcome", "pnl_amount", "pnl_percent", "risk_amount", "r_multiple", "commission", "net_pnl", "reviewed_at", "note"})

	formatPtr := func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	formatTimePtr := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}
	for _, t := range trades {
		cw.Write([]string{
			t.OpenedAt.UTC().Format(time.RFC3339),
			validation.SanitizeForFormulaInjection(t.Instrument),
			string(t.Direction),
			string(t.Outcome),
			strconv.FormatFloat(t.PnlAmount, 'f', -1, 64),
			strconv.FormatFloat(t.PnlPercent, 'f', -1, 64),
			formatPtr(t.RiskAmount),
			formatPtr(t.RMultiple),
			formatPtr(t.Commission),
			formatPtr(t.NetPnl),
			formatTimePtr(t.ReviewedAt),
			validation.SanitizeForFormulaInjection(t.Note),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to flush CSV export", "error", err)
	}
}

// HandleImportTrades imports a journal CSV export into the given account.
func (h *TradeHandler) HandleImportTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxUploadSizeBytes)
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		sendJSONError(w, "Uploaded file is too large or malformed", http.StatusBadRequest)
		return
	}

	var accountID int64
	if raw := r.FormValue("account_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			sendJSONError(w, "Invalid account_id", http.StatusBadRequest)
			return
		}
		accountID = parsed
	}
	if err := verifyAccountOwnership(userID, accountID); err != nil {
		sendJSONError(w, "Account not found", http.StatusNotFound)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		sendJSONError(w, "Missing file upload field 'file'", http.StatusBadRequest)
		return
	}
	defer file.Close()

	trades, err := h.parser.Parse(file)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to parse journal CSV", "error", err)
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	imported := 0
	for i := range trades {
		trades[i].ID = uuid.New().String()
		trades[i].UserID = userID
		trades[i].AccountID = accountID
		trades[i].Note = validation.SanitizeText(validation.StripUnprintable(trades[i].Note))

		if err := model.CreateTrade(database.DB, &trades[i]); err != nil {
			logger.ErrorFromContext(r.Context(), "Failed to insert imported trade", "error", err)
			sendJSONError(w, "Failed to import trades", http.StatusInternalServerError)
			return
		}
		imported++
	}

	h.reportService.InvalidateUserCache(userID)
	logger.InfoFromContext(r.Context(), "Journal import complete", "imported", imported)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"imported": imported})
}
