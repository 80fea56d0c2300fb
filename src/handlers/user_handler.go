// backend/src/handlers/user_handler.go

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradevault/backend/src/config"
	"github.com/username/tradevault/backend/src/database"
	"github.com/username/tradevault/backend/src/logger"
	"github.com/username/tradevault/backend/src/model"
	"github.com/username/tradevault/backend/src/security"
	"github.com/username/tradevault/backend/src/security/validation"
	"github.com/username/tradevault/backend/src/services"
	"golang.org/x/oauth2"
)

type contextKey string

const userIDContextKey contextKey = "userID"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var passwordRegex = regexp.MustCompile(`^.{6,}$`)

var (
	googleOauthConfig *oauth2.Config
	oauthStateString  string // set by InitializeGoogleOAuthConfig from config
)

type UserHandler struct {
	authService   *security.AuthService
	reportService services.ReportService
	mfaService    *services.MFAService
	cache         *cache.Cache
}

func NewUserHandler(authService *security.AuthService, reportService services.ReportService, mfaService *services.MFAService, reportCache *cache.Cache) *UserHandler {
	return &UserHandler{
		authService:   authService,
		reportService: reportService,
		mfaService:    mfaService,
		cache:         reportCache,
	}
}

func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	logger.L.Warn("Sending JSON error to client", "message", message, "statusCode", statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// HandleGetProfile returns the authenticated user's profile.
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		sendJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	user.IsAdmin = isAdmin(user.Email)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// HandleUpdateTimeZone stores the user's preferred IANA zone. Reports bucket
// days in this zone from the next computation on.
func (h *UserHandler) HandleUpdateTimeZone(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		TimeZone string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.TimeZone = strings.TrimSpace(req.TimeZone)
	if err := validation.ValidateTimeZone(req.TimeZone); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		sendJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	if err := user.UpdateTimeZone(database.DB, req.TimeZone); err != nil {
		logger.L.Error("Failed to update user time zone", "userID", userID, "error", err)
		sendJSONError(w, "Failed to update time zone", http.StatusInternalServerError)
		return
	}

	// Cached reports were bucketed in the old zone.
	h.reportService.InvalidateUserCache(userID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"timezone": req.TimeZone})
}

// --- ADMIN FUNCTIONS ---

func (h *UserHandler) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserIDFromContext(r.Context())
		if !ok {
			sendJSONError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		user, err := model.GetUserByID(database.DB, userID)
		if err != nil {
			sendJSONError(w, "User not found", http.StatusNotFound)
			return
		}

		isUserAdmin := false
		for _, adminEmail := range config.Cfg.AdminEmails {
			if strings.EqualFold(user.Email, adminEmail) {
				isUserAdmin = true
				break
			}
		}

		if !isUserAdmin {
			logger.L.Warn("Admin access denied for user", "userID", user.ID)
			sendJSONError(w, "Forbidden: Administrator access required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type AdminStats struct {
	TotalUsers         int `json:"totalUsers"`
	TotalAccounts      int `json:"totalAccounts"`
	TotalTrades        int `json:"totalTrades"`
	ReviewedTrades     int `json:"reviewedTrades"`
	DailyActiveUsers   int `json:"dailyActiveUsers"`
	MonthlyActiveUsers int `json:"monthlyActiveUsers"`
	NewUsersToday      int `json:"newUsersToday"`
	NewUsersThisWeek   int `json:"newUsersThisWeek"`
	NewUsersThisMonth  int `json:"newUsersThisMonth"`

	AuthProviderStats []ChartData      `json:"authProviderStats"`
	TradesPerDay      []TimeSeriesData `json:"tradesPerDay"`
	UsersPerDay       []TimeSeriesData `json:"usersPerDay"`
}

type ChartData struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type TimeSeriesData struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func (h *UserHandler) HandleGetAdminStats(w http.ResponseWriter, r *http.Request) {
	var stats AdminStats

	database.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&stats.TotalUsers)
	database.DB.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&stats.TotalAccounts)
	database.DB.QueryRow("SELECT COUNT(*) FROM trades").Scan(&stats.TotalTrades)
	database.DB.QueryRow("SELECT COUNT(*) FROM trades WHERE reviewed_at IS NOT NULL").Scan(&stats.ReviewedTrades)
	database.DB.QueryRow("SELECT COUNT(DISTINCT user_id) FROM login_history WHERE login_at > date('now', '-1 day')").Scan(&stats.DailyActiveUsers)
	database.DB.QueryRow("SELECT COUNT(DISTINCT user_id) FROM login_history WHERE login_at > date('now', '-30 days')").Scan(&stats.MonthlyActiveUsers)

	database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE created_at > date('now', 'start of day')").Scan(&stats.NewUsersToday)
	database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE created_at > date('now', '-7 days')").Scan(&stats.NewUsersThisWeek)
	database.DB.QueryRow("SELECT COUNT(*) FROM users WHERE created_at > date('now', 'start of month')").Scan(&stats.NewUsersThisMonth)

	authRows, _ := database.DB.Query("SELECT auth_provider, COUNT(*) FROM users GROUP BY auth_provider")
	if authRows != nil {
		defer authRows.Close()
		for authRows.Next() {
			var name string
			var val float64
			authRows.Scan(&name, &val)
			stats.AuthProviderStats = append(stats.AuthProviderStats, ChartData{Name: name, Value: val})
		}
	}

	rowsTrades, _ := database.DB.Query(`
		SELECT strftime('%Y-%m-%d', created_at) as day, COUNT(*)
		FROM trades
		WHERE created_at >= date('now', '-30 days')
		GROUP BY day ORDER BY day ASC
	`)
	if rowsTrades != nil {
		defer rowsTrades.Close()
		for rowsTrades.Next() {
			var d TimeSeriesData
			rowsTrades.Scan(&d.Date, &d.Count)
			stats.TradesPerDay = append(stats.TradesPerDay, d)
		}
	}

	rowsUsers, _ := database.DB.Query(`
		SELECT strftime('%Y-%m-%d', created_at) as day, COUNT(*)
		FROM users
		WHERE created_at >= date('now', '-30 days')
		GROUP BY day ORDER BY day ASC
	`)
	if rowsUsers != nil {
		defer rowsUsers.Close()
		for rowsUsers.Next() {
			var d TimeSeriesData
			rowsUsers.Scan(&d.Date, &d.Count)
			stats.UsersPerDay = append(stats.UsersPerDay, d)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (h *UserHandler) HandleAdminClearStatsCache(w http.ResponseWriter, r *http.Request) {
	h.cache.Flush()
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) HandleSetupMFA(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		sendJSONError(w, "User not found", http.StatusNotFound)
		return
	}

	secret, qrCode, err := h.mfaService.GenerateMFASecret(user.Username)
	if err != nil {
		sendJSONError(w, "Failed to generate MFA", http.StatusInternalServerError)
		return
	}

	// Store the secret pending activation; mfa_enabled stays off until the
	// user proves they can produce a valid code.
	if err := user.UpdateMfaSecret(database.DB, secret); err != nil {
		sendJSONError(w, "Failed to save MFA secret", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"secret":  secret,
		"qr_code": qrCode,
	})
}

func (h *UserHandler) HandleActivateMFA(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		sendJSONError(w, "User not found", http.StatusNotFound)
		return
	}

	if !h.mfaService.ValidateToken(user.MfaSecret, req.Code) {
		sendJSONError(w, "Invalid MFA code", http.StatusUnauthorized)
		return
	}

	if err := user.UpdateMfaEnabled(database.DB, true); err != nil {
		logger.L.Error("Failed to enable MFA", "userID", userID, "error", err)
		sendJSONError(w, "Failed to enable MFA", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "MFA enabled"})
}

// HandleDeleteAccount removes the user and all their journal data.
func (h *UserHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to get user for account deletion", "userID", userID, "error", err)
		sendJSONError(w, "Failed to retrieve user information", http.StatusInternalServerError)
		return
	}

	// Only local accounts have a password to verify.
	if user.AuthProvider == "local" {
		if err := user.CheckPassword(req.Password); err != nil {
			logger.L.Warn("Password mismatch for account deletion", "userID", userID)
			sendJSONError(w, "Incorrect password. Account deletion failed.", http.StatusForbidden)
			return
		}
	}

	txDB, err := database.DB.Begin()
	if err != nil {
		logger.L.Error("Failed to begin transaction for account deletion", "userID", userID, "error", err)
		sendJSONError(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := txDB.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				logger.L.Error("Error rolling back DB transaction for account deletion", "userID", userID, "rollbackError", rbErr)
			}
		}
	}()

	for _, stmt := range []string{
		"DELETE FROM trades WHERE user_id = ?",
		"DELETE FROM accounts WHERE user_id = ?",
		"DELETE FROM sessions WHERE user_id = ?",
		"DELETE FROM login_history WHERE user_id = ?",
		"DELETE FROM users WHERE id = ?",
	} {
		if _, err = txDB.Exec(stmt, userID); err != nil {
			logger.L.Error("Failed to delete user data", "userID", userID, "stmt", stmt, "error", err)
			sendJSONError(w, "Failed to delete account data", http.StatusInternalServerError)
			return
		}
	}

	if err = txDB.Commit(); err != nil {
		logger.L.Error("Failed to commit transaction for account deletion", "userID", userID, "error", err)
		sendJSONError(w, "Failed to finalize account deletion", http.StatusInternalServerError)
		return
	}
	committed = true

	h.reportService.InvalidateUserCache(userID)
	logger.L.Info("Account deleted successfully", "userID", userID)
	w.WriteHeader(http.StatusNoContent)
}
