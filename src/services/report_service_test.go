package services

import (
	"os"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
	"github.com/username/tradevault/backend/src/logger"
	"github.com/username/tradevault/backend/src/model"
	"github.com/username/tradevault/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

type fakeTradeStore struct {
	trades []models.Trade
}

func (f *fakeTradeStore) ListTrades(userID, accountID int64, start, end time.Time) ([]models.Trade, error) {
	out := make([]models.Trade, 0)
	for _, t := range f.trades {
		if t.UserID != userID {
			continue
		}
		if accountID != 0 && t.AccountID != accountID {
			continue
		}
		if t.OpenedAt.Before(start) || !t.OpenedAt.Before(end) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTradeStore) ListTradesBefore(userID, accountID int64, before time.Time) ([]models.Trade, error) {
	out := make([]models.Trade, 0)
	for _, t := range f.trades {
		if t.UserID != userID {
			continue
		}
		if accountID != 0 && t.AccountID != accountID {
			continue
		}
		if !t.OpenedAt.Before(before) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type fakeAccountStore struct {
	accounts []models.Account
}

func (f *fakeAccountStore) GetAccountByID(id, userID int64) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.ID == id && a.UserID == userID {
			acc := a
			return &acc, nil
		}
	}
	return nil, model.ErrAccountNotFound
}

func (f *fakeAccountStore) ListAccountsByUser(userID int64) ([]models.Account, error) {
	out := make([]models.Account, 0)
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeUserPrefs struct {
	timezone string
}

func (f *fakeUserPrefs) GetUserTimeZone(userID int64) (string, error) {
	return f.timezone, nil
}

func fptr(v float64) *float64 { return &v }

func journalTrade(id string, userID, accountID int64, openedAt time.Time, outcome models.Outcome, pnl float64) models.Trade {
	return models.Trade{
		TradeRecord: models.TradeRecord{
			ID:         id,
			OpenedAt:   openedAt,
			Instrument: "ES",
			Direction:  models.DirectionBuy,
			Outcome:    outcome,
			PnlAmount:  pnl,
		},
		UserID:    userID,
		AccountID: accountID,
	}
}

func newTestService(trades *fakeTradeStore, accounts *fakeAccountStore, prefs *fakeUserPrefs) ReportService {
	return NewReportService(trades, accounts, prefs, cache.New(time.Minute, time.Minute), time.Minute, "UTC")
}

func TestGetMonthlyReportCarriesBalanceForward(t *testing.T) {
	feb := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)

	// February trade is reviewed with net pnl 180 overriding the gross 200;
	// only the net carries into March's starting balance.
	prior := journalTrade("t1", 1, 7, feb, models.OutcomeWin, 200)
	prior.NetPnl = fptr(180)
	reviewed := feb.Add(24 * time.Hour)
	prior.ReviewedAt = &reviewed

	trades := &fakeTradeStore{trades: []models.Trade{
		prior,
		journalTrade("t2", 1, 7, mar, models.OutcomeWin, 50),
	}}
	accounts := &fakeAccountStore{accounts: []models.Account{
		{ID: 7, UserID: 1, Name: "Main", StartingBalance: 1000, BaseCurrency: "EUR"},
	}}
	svc := newTestService(trades, accounts, &fakeUserPrefs{})

	rep, err := svc.GetMonthlyReport(1, 7, "2026-03")
	require.NoError(t, err)
	require.Equal(t, "2026-03", rep.Month)
	require.Equal(t, "EUR", rep.BaseCurrency)
	require.Equal(t, 1180.0, rep.Report.StartingBalance)
	require.Equal(t, 1230.0, rep.Report.EndingBalance)
	require.Equal(t, 1, rep.Report.TotalTrades)
}

func TestGetMonthlyReportAllAccountsSumsBalances(t *testing.T) {
	mar := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	trades := &fakeTradeStore{trades: []models.Trade{
		journalTrade("a", 1, 7, mar, models.OutcomeWin, 10),
		journalTrade("b", 1, 8, mar.Add(time.Hour), models.OutcomeLoss, -5),
	}}
	accounts := &fakeAccountStore{accounts: []models.Account{
		{ID: 7, UserID: 1, StartingBalance: 600, BaseCurrency: "EUR"},
		{ID: 8, UserID: 1, StartingBalance: 400, BaseCurrency: "USD"},
	}}
	svc := newTestService(trades, accounts, &fakeUserPrefs{})

	rep, err := svc.GetMonthlyReport(1, 0, "2026-03")
	require.NoError(t, err)
	require.Equal(t, 1000.0, rep.Report.StartingBalance)
	require.Equal(t, 2, rep.Report.TotalTrades)
	require.Equal(t, "EUR", rep.BaseCurrency) // first account's currency wins
}

func TestGetMonthlyReportUsesUserTimeZone(t *testing.T) {
	// 23:30 UTC on March 10 is already March 11 in Athens.
	late := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	trades := &fakeTradeStore{trades: []models.Trade{
		journalTrade("a", 1, 7, late, models.OutcomeWin, 10),
	}}
	accounts := &fakeAccountStore{accounts: []models.Account{
		{ID: 7, UserID: 1, StartingBalance: 100, BaseCurrency: "USD"},
	}}
	svc := newTestService(trades, accounts, &fakeUserPrefs{timezone: "Europe/Athens"})

	rep, err := svc.GetMonthlyReport(1, 7, "2026-03")
	require.NoError(t, err)
	require.Equal(t, "Europe/Athens", rep.Report.TimeZone)
	require.Len(t, rep.Report.Daily, 1)
	require.Equal(t, "2026-03-11", rep.Report.Daily[0].Date)
}

func TestGetMonthlyReportRejectsBadMonth(t *testing.T) {
	svc := newTestService(&fakeTradeStore{}, &fakeAccountStore{}, &fakeUserPrefs{})
	_, err := svc.GetMonthlyReport(1, 0, "march-2026")
	require.ErrorIs(t, err, ErrInvalidMonth)
}

func TestInvalidateUserCacheDropsOnlyThatUser(t *testing.T) {
	mar := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	trades := &fakeTradeStore{trades: []models.Trade{
		journalTrade("a", 1, 7, mar, models.OutcomeWin, 10),
		journalTrade("b", 2, 9, mar, models.OutcomeWin, 20),
	}}
	accounts := &fakeAccountStore{accounts: []models.Account{
		{ID: 7, UserID: 1, StartingBalance: 100, BaseCurrency: "USD"},
		{ID: 9, UserID: 2, StartingBalance: 100, BaseCurrency: "USD"},
	}}
	c := cache.New(time.Minute, time.Minute)
	svc := NewReportService(trades, accounts, &fakeUserPrefs{}, c, time.Minute, "UTC")

	_, err := svc.GetMonthlyReport(1, 7, "2026-03")
	require.NoError(t, err)
	_, err = svc.GetMonthlyReport(2, 9, "2026-03")
	require.NoError(t, err)
	require.Equal(t, 2, c.ItemCount())

	svc.InvalidateUserCache(1)
	require.Equal(t, 1, c.ItemCount())
	_, found := c.Get(reportCacheKey(2, 9, "2026-03"))
	require.True(t, found)
}
