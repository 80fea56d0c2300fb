// backend/src/services/report_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradevault/backend/src/logger"
	"github.com/username/tradevault/backend/src/models"
	"github.com/username/tradevault/backend/src/report"
)

type reportService struct {
	trades          TradeStore
	accounts        AccountStore
	users           UserPrefs
	cache           *cache.Cache
	cacheTTL        time.Duration
	defaultTimeZone string
}

// NewReportService wires the report engine to the persistence layer.
// defaultTimeZone may be empty, in which case the server's local zone is the
// final fallback for users without a preference.
func NewReportService(trades TradeStore, accounts AccountStore, users UserPrefs, reportCache *cache.Cache, cacheTTL time.Duration, defaultTimeZone string) ReportService {
	return &reportService{
		trades:          trades,
		accounts:        accounts,
		users:           users,
		cache:           reportCache,
		cacheTTL:        cacheTTL,
		defaultTimeZone: defaultTimeZone,
	}
}

func reportCacheKey(userID, accountID int64, month string) string {
	return fmt.Sprintf("report:%d:%d:%s", userID, accountID, month)
}

func (s *reportService) GetMonthlyReport(userID, accountID int64, month string) (*MonthlyReport, error) {
	cacheKey := reportCacheKey(userID, accountID, month)
	if cached, found := s.cache.Get(cacheKey); found {
		if rep, ok := cached.(*MonthlyReport); ok {
			logger.L.Debug("Monthly report served from cache", "userID", userID, "month", month)
			return rep, nil
		}
	}

	monthStart, monthEnd, err := report.MonthRange(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}

	baseBalance, baseCurrency, err := s.resolveAccountBase(userID, accountID)
	if err != nil {
		return nil, err
	}

	timeZone, err := s.resolveTimeZone(userID)
	if err != nil {
		return nil, err
	}

	// The month's opening balance carries forward every prior trade at its
	// effective (net when reviewed) pnl, on top of the configured account base.
	prior, err := s.trades.ListTradesBefore(userID, accountID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("loading prior trades: %w", err)
	}
	startingBalance := baseBalance
	for _, t := range prior {
		startingBalance += report.Normalize(t.TradeRecord).Amount
	}

	trades, err := s.trades.ListTrades(userID, accountID, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("loading trades for month: %w", err)
	}
	records := make([]models.TradeRecord, len(trades))
	for i, t := range trades {
		records[i] = t.TradeRecord
	}

	core, err := report.Compute(report.ReportInput{
		Trades:          records,
		StartingBalance: startingBalance,
		TimeZone:        timeZone,
	})
	if err != nil {
		return nil, err
	}

	result := &MonthlyReport{
		Month:        month,
		AccountID:    accountID,
		BaseCurrency: baseCurrency,
		Report:       core,
	}

	s.cache.Set(cacheKey, result, s.cacheTTL)
	logger.L.Info("Monthly report computed", "userID", userID, "accountID", accountID, "month", month, "trades", core.TotalTrades)
	return result, nil
}

// resolveAccountBase returns the configured starting balance and currency.
// accountID 0 spans all of the user's accounts: balances sum, and the first
// account's currency wins.
func (s *reportService) resolveAccountBase(userID, accountID int64) (float64, string, error) {
	if accountID != 0 {
		account, err := s.accounts.GetAccountByID(accountID, userID)
		if err != nil {
			return 0, "", err
		}
		return account.StartingBalance, account.BaseCurrency, nil
	}

	accounts, err := s.accounts.ListAccountsByUser(userID)
	if err != nil {
		return 0, "", fmt.Errorf("listing accounts: %w", err)
	}
	total := 0.0
	currency := "USD"
	for i, a := range accounts {
		total += a.StartingBalance
		if i == 0 && a.BaseCurrency != "" {
			currency = a.BaseCurrency
		}
	}
	return total, currency, nil
}

func (s *reportService) resolveTimeZone(userID int64) (string, error) {
	tz, err := s.users.GetUserTimeZone(userID)
	if err != nil {
		return "", fmt.Errorf("loading user time zone: %w", err)
	}
	if tz != "" {
		return tz, nil
	}
	if s.defaultTimeZone != "" {
		return s.defaultTimeZone, nil
	}
	return time.Local.String(), nil
}

// InvalidateUserCache drops every cached report for the user. Called after
// any trade or account mutation.
func (s *reportService) InvalidateUserCache(userID int64) {
	prefix := fmt.Sprintf("report:%d:", userID)
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
	logger.L.Debug("Report cache invalidated", "userID", userID)
}
