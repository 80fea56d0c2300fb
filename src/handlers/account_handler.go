package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/username/tradevault/backend/src/database"
	"github.com/username/tradevault/backend/src/logger"
	"github.com/username/tradevault/backend/src/model"
	"github.com/username/tradevault/backend/src/models"
	"github.com/username/tradevault/backend/src/security/validation"
	"github.com/username/tradevault/backend/src/services"
)

// AccountHandler serves the trading account CRUD endpoints.
type AccountHandler struct {
	reportService services.ReportService
}

func NewAccountHandler(reportService services.ReportService) *AccountHandler {
	return &AccountHandler{reportService: reportService}
}

type accountRequest struct {
	Name            string  `json:"name"`
	StartingBalance float64 `json:"starting_balance"`
	BaseCurrency    string  `json:"base_currency"`
}

func (req *accountRequest) validate() error {
	req.Name = validation.SanitizeText(req.Name)
	if err := validation.ValidateStringNotEmpty(req.Name, "Account name"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Name, validation.MaxAccountNameLength, "Account name"); err != nil {
		return err
	}
	if req.BaseCurrency != "" {
		if err := validation.ValidateCurrencyCode(req.BaseCurrency); err != nil {
			return err
		}
	}
	return nil
}

func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	accounts, err := model.ListAccountsByUser(database.DB, userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to list accounts", "error", err)
		sendJSONError(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}

func (h *AccountHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	account := &models.Account{
		UserID:          userID,
		Name:            req.Name,
		StartingBalance: req.StartingBalance,
		BaseCurrency:    req.BaseCurrency,
	}
	if err := model.CreateAccount(database.DB, account); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to create account", "error", err)
		sendJSONError(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)
	logger.InfoFromContext(r.Context(), "Account created", "accountID", account.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
}

func (h *AccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	account, err := model.GetAccountByID(database.DB, accountID, userID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			sendJSONError(w, "Account not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to get account", "accountID", accountID, "error", err)
		sendJSONError(w, "Failed to get account", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(account)
}

func (h *AccountHandler) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	account, err := model.GetAccountByID(database.DB, accountID, userID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			sendJSONError(w, "Account not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to get account for update", "accountID", accountID, "error", err)
		sendJSONError(w, "Failed to update account", http.StatusInternalServerError)
		return
	}

	account.Name = req.Name
	account.StartingBalance = req.StartingBalance
	if req.BaseCurrency != "" {
		account.BaseCurrency = req.BaseCurrency
	}

	if err := model.UpdateAccount(database.DB, account); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to update account", "accountID", accountID, "error", err)
		sendJSONError(w, "Failed to update account", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(account)
}

func (h *AccountHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		sendJSONError(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	// Trades belonging to the account go with it.
	tx, err := database.DB.Begin()
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to begin transaction for account deletion", "accountID", accountID, "error", err)
		sendJSONError(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM trades WHERE account_id = ? AND user_id = ?", accountID, userID); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to delete trades for account", "accountID", accountID, "error", err)
		sendJSONError(w, "Failed to delete account data", http.StatusInternalServerError)
		return
	}

	res, err := tx.Exec("DELETE FROM accounts WHERE id = ? AND user_id = ?", accountID, userID)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to delete account", "accountID", accountID, "error", err)
		sendJSONError(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		sendJSONError(w, "Account not found", http.StatusNotFound)
		return
	}

	if err := tx.Commit(); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to commit account deletion", "accountID", accountID, "error", err)
		sendJSONError(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}

	h.reportService.InvalidateUserCache(userID)
	logger.InfoFromContext(r.Context(), "Account deleted", "accountID", accountID)

	w.WriteHeader(http.StatusNoContent)
}
