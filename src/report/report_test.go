package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/username/tradevault/backend/src/models"
)

func fptr(v float64) *float64 { return &v }

func tptr(t time.Time) *time.Time { return &t }

func trade(id string, openedAt time.Time, outcome models.Outcome, pnl float64) models.TradeRecord {
	return models.TradeRecord{
		ID:         id,
		OpenedAt:   openedAt,
		Instrument: "EURUSD",
		Direction:  models.DirectionBuy,
		Outcome:    outcome,
		PnlAmount:  pnl,
	}
}

// Two trades on a 1000 starting balance: +100 reviewed with commission 10
// (net +90), then -50 unreviewed. The -50 lands after the 1090 peak.
func scenarioA(base time.Time) []models.TradeRecord {
	t1 := trade("a", base, models.OutcomeWin, 100)
	t1.ReviewedAt = tptr(base.Add(48 * time.Hour))
	t1.Commission = fptr(10)

	t2 := trade("b", base.Add(time.Hour), models.OutcomeLoss, -50)
	return []models.TradeRecord{t1, t2}
}

func TestComputeScenarioA(t *testing.T) {
	base := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	rep, err := Compute(ReportInput{
		Trades:          scenarioA(base),
		StartingBalance: 1000,
		TimeZone:        "UTC",
	})
	require.NoError(t, err)

	require.Equal(t, 2, rep.TotalTrades)
	require.Equal(t, 1, rep.Wins)
	require.Equal(t, 1, rep.Losses)
	require.Equal(t, 0, rep.Breakeven)
	require.Equal(t, 50.0, rep.WinRate)

	require.Equal(t, 40.0, rep.NetPnl)
	require.Equal(t, 1040.0, rep.EndingBalance)
	require.Equal(t, 90.0, rep.GrossProfit)
	require.Equal(t, 50.0, rep.GrossLossAbs)
	require.Equal(t, 1.8, rep.ProfitFactor)
	require.Equal(t, 1.8, rep.Rrr) // avgWin 90 / avgLoss 50

	// drawdown: -50 applied after the 1090 peak
	require.Equal(t, 50.0, rep.MaxDrawdown)
	require.InDelta(t, 4.587, rep.MaxDrawdownPct, 0.001)

	// expectancy = 0.5*90 - 0.5*50
	require.Equal(t, 20.0, rep.Expectancy)
}

func TestComputeScenarioBSingleBreakeven(t *testing.T) {
	base := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	rep, err := Compute(ReportInput{
		Trades:          []models.TradeRecord{trade("a", base, models.OutcomeBreakeven, 0)},
		StartingBalance: 500,
		TimeZone:        "UTC",
	})
	require.NoError(t, err)

	require.Equal(t, 0, rep.Wins)
	require.Equal(t, 0, rep.Losses)
	require.Equal(t, 1, rep.Breakeven)
	require.Equal(t, 0.0, rep.WinRate)
	require.Equal(t, 0.0, rep.ProfitFactor)
	require.Equal(t, 0.0, rep.Sharpe) // single day, n < 2
	require.Equal(t, 500.0, rep.EndingBalance)
}

func TestComputeEmptyInput(t *testing.T) {
	rep, err := Compute(ReportInput{Trades: nil, StartingBalance: 2500, TimeZone: "UTC"})
	require.NoError(t, err)

	require.Equal(t, 0, rep.TotalTrades)
	require.Equal(t, 0.0, rep.WinRate)
	require.Equal(t, 0.0, rep.NetPnl)
	require.Equal(t, 0.0, rep.MaxDrawdown)
	require.Equal(t, 0.0, rep.MaxDrawdownPct)
	require.Equal(t, 2500.0, rep.EndingBalance)
	require.NotNil(t, rep.Daily)
	require.Empty(t, rep.Daily)
	require.NotNil(t, rep.BySymbol)
	require.Empty(t, rep.BySymbol)
	require.Nil(t, rep.BestDay)
	require.Nil(t, rep.WorstDay)
}

func TestComputeInvalidTimeZone(t *testing.T) {
	_, err := Compute(ReportInput{TimeZone: "Not/AZone"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Not/AZone")
}

// Shuffling the input batch must not change a single output byte; the sort
// with its ID tie-break is internal.
func TestComputeOrderingInvariance(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		trade("c", base.Add(26*time.Hour), models.OutcomeLoss, -30),
		trade("a", base, models.OutcomeWin, 120),
		trade("d", base.Add(26*time.Hour), models.OutcomeWin, 15), // same instant as "c"
		trade("b", base.Add(time.Hour), models.OutcomeBreakeven, 2),
	}
	trades[0].Instrument = "BTCUSD"

	permutations := [][]models.TradeRecord{
		{trades[0], trades[1], trades[2], trades[3]},
		{trades[3], trades[2], trades[1], trades[0]},
		{trades[2], trades[0], trades[3], trades[1]},
	}

	var want []byte
	for i, perm := range permutations {
		rep, err := Compute(ReportInput{Trades: perm, StartingBalance: 1000, TimeZone: "America/New_York"})
		require.NoError(t, err)
		got, err := json.Marshal(rep)
		require.NoError(t, err)
		if i == 0 {
			want = got
			continue
		}
		require.Equal(t, string(want), string(got), "permutation %d diverged", i)
	}
}

func TestComputeBalanceConservation(t *testing.T) {
	base := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	trades := scenarioA(base)
	trades = append(trades, trade("z", base.Add(50*time.Hour), models.OutcomeLoss, -12.5))

	rep, err := Compute(ReportInput{Trades: trades, StartingBalance: 777.25, TimeZone: "UTC"})
	require.NoError(t, err)
	require.Equal(t, rep.StartingBalance+rep.NetPnl, rep.EndingBalance)
}

// The identity must hold bit-exactly even for decimal fractions with no
// binary representation, where summing pnl from the seed and summing it from
// zero round differently (0.1 + 0.2 + 0.3 vs 0.1 + (0.2 + 0.3)).
func TestComputeBalanceConservationExact(t *testing.T) {
	base := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		trade("a", base, models.OutcomeWin, 0.2),
		trade("b", base.Add(time.Hour), models.OutcomeWin, 0.3),
	}

	rep, err := Compute(ReportInput{Trades: trades, StartingBalance: 0.1, TimeZone: "UTC"})
	require.NoError(t, err)
	require.Equal(t, rep.StartingBalance+rep.NetPnl, rep.EndingBalance)
	require.Equal(t, rep.EndingBalance, rep.Daily[len(rep.Daily)-1].EndingBalance)
}

func TestComputeMonotonicEquityHasZeroDrawdown(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		trade("a", base, models.OutcomeWin, 10),
		trade("b", base.Add(time.Hour), models.OutcomeWin, 20),
		trade("c", base.Add(2*time.Hour), models.OutcomeWin, 5),
	}
	rep, err := Compute(ReportInput{Trades: trades, StartingBalance: 100, TimeZone: "UTC"})
	require.NoError(t, err)
	require.Equal(t, 0.0, rep.MaxDrawdown)
	require.Equal(t, 0.0, rep.MaxDrawdownPct)
}

// A month with no losing trades reports profit factor 0, not +Inf. The 0 is
// the documented "undefined" sentinel.
func TestComputeProfitFactorSentinel(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		trade("a", base, models.OutcomeWin, 40),
		trade("b", base.Add(time.Hour), models.OutcomeWin, 60),
	}
	rep, err := Compute(ReportInput{Trades: trades, StartingBalance: 1000, TimeZone: "UTC"})
	require.NoError(t, err)
	require.Equal(t, 100.0, rep.GrossProfit)
	require.Equal(t, 0.0, rep.GrossLossAbs)
	require.Equal(t, 0.0, rep.ProfitFactor)
	require.Equal(t, 0.0, rep.Rrr)
}

// 23:50 and next-day 00:10 UTC: one local day under UTC+2, two under UTC.
func TestComputeTimezoneBoundary(t *testing.T) {
	first := time.Date(2026, 3, 10, 23, 50, 0, 0, time.UTC)
	second := time.Date(2026, 3, 11, 0, 10, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		trade("a", first, models.OutcomeWin, 10),
		trade("b", second, models.OutcomeLoss, -5),
	}

	utcRep, err := Compute(ReportInput{Trades: trades, StartingBalance: 100, TimeZone: "UTC"})
	require.NoError(t, err)
	require.Len(t, utcRep.Daily, 2)
	require.Equal(t, "2026-03-10", utcRep.Daily[0].Date)
	require.Equal(t, "2026-03-11", utcRep.Daily[1].Date)

	// Athens is UTC+2 in March (before the DST switch late in the month),
	// so both instants fall on local March 11.
	eetRep, err := Compute(ReportInput{Trades: trades, StartingBalance: 100, TimeZone: "Europe/Athens"})
	require.NoError(t, err)
	require.Len(t, eetRep.Daily, 1)
	require.Equal(t, "2026-03-11", eetRep.Daily[0].Date)
	require.Equal(t, 2, eetRep.Daily[0].TradeCount)
	require.Equal(t, 5.0, eetRep.Daily[0].NetPnl)
}

func TestComputeBestAndWorstDay(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		trade("a", base, models.OutcomeWin, 30),
		trade("b", base.AddDate(0, 0, 1), models.OutcomeLoss, -80),
		trade("c", base.AddDate(0, 0, 2), models.OutcomeWin, 30), // ties day one; earliest wins
	}
	rep, err := Compute(ReportInput{Trades: trades, StartingBalance: 1000, TimeZone: "UTC"})
	require.NoError(t, err)

	require.NotNil(t, rep.BestDay)
	require.Equal(t, "2026-03-02", rep.BestDay.Date)
	require.NotNil(t, rep.WorstDay)
	require.Equal(t, "2026-03-03", rep.WorstDay.Date)
}

func TestComputeDayBucketEndingBalances(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	trades := []models.TradeRecord{
		trade("a", base, models.OutcomeWin, 100),
		trade("b", base.Add(2*time.Hour), models.OutcomeLoss, -40),
		trade("c", base.AddDate(0, 0, 1), models.OutcomeWin, 25),
	}
	rep, err := Compute(ReportInput{Trades: trades, StartingBalance: 1000, TimeZone: "UTC"})
	require.NoError(t, err)

	require.Len(t, rep.Daily, 2)
	require.Equal(t, 60.0, rep.Daily[0].NetPnl)
	require.Equal(t, 1060.0, rep.Daily[0].EndingBalance)
	require.Equal(t, 1085.0, rep.Daily[1].EndingBalance)
	require.Equal(t, rep.EndingBalance, rep.Daily[1].EndingBalance)
}
