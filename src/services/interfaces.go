// backend/src/services/interfaces.go
package services

import (
	"errors"
	"time"

	"github.com/username/tradevault/backend/src/models"
)

const (
	DefaultCacheExpiration = 5 * time.Minute
	CacheCleanupInterval   = 10 * time.Minute
)

// MonthlyReport is the API-facing envelope around the computed report.
type MonthlyReport struct {
	Month        string             `json:"month"`
	AccountID    int64              `json:"account_id,omitempty"`
	BaseCurrency string             `json:"base_currency"`
	Report       *models.CoreReport `json:"report"`
}

// Define common service errors
var ErrInvalidMonth = errors.New("invalid month format")

// TradeStore is the slice of trade persistence the report service needs.
type TradeStore interface {
	ListTrades(userID, accountID int64, start, end time.Time) ([]models.Trade, error)
	ListTradesBefore(userID, accountID int64, before time.Time) ([]models.Trade, error)
}

// AccountStore resolves accounts and their configured starting balances.
type AccountStore interface {
	GetAccountByID(id, userID int64) (*models.Account, error)
	ListAccountsByUser(userID int64) ([]models.Account, error)
}

// UserPrefs exposes the per-user settings the report service reads.
type UserPrefs interface {
	GetUserTimeZone(userID int64) (string, error)
}

// ReportService computes monthly performance reports over journaled trades.
type ReportService interface {
	GetMonthlyReport(userID, accountID int64, month string) (*MonthlyReport, error)
	InvalidateUserCache(userID int64)
}
