package report

import (
	"math"

	"github.com/username/tradevault/backend/src/models"
)

// summarize derives the scalar report fields from the normalized batch, the
// equity projection and the daily buckets.
//
// Every ratio documents its own zero fallback instead of ever reporting
// Inf or NaN: winRate is 0 with no trades, avgWin/avgLoss are 0 with no
// wins/losses, and rrr and profitFactor report 0 when their denominator is
// zero even if the numerator is positive.
func summarize(sorted []models.TradeRecord, effs []Effective, proj projection, daily []models.DailyBucket) *models.CoreReport {
	rep := &models.CoreReport{
		EndingBalance:  proj.endingBalance,
		MaxDrawdown:    proj.maxDrawdown,
		MaxDrawdownPct: proj.maxDrawdownPct,
		TotalTrades:    len(sorted),
	}

	for i, t := range sorted {
		amount := effs[i].Amount
		rep.NetPnl += amount
		if amount > 0 {
			rep.GrossProfit += amount
		} else if amount < 0 {
			rep.GrossLossAbs += -amount
		}

		switch t.Outcome {
		case models.OutcomeWin:
			rep.Wins++
		case models.OutcomeLoss:
			rep.Losses++
		case models.OutcomeBreakeven:
			rep.Breakeven++
		}
	}

	if rep.TotalTrades > 0 {
		rep.WinRate = float64(rep.Wins) / float64(rep.TotalTrades) * 100
	}
	if rep.Wins > 0 {
		rep.AvgWin = rep.GrossProfit / float64(rep.Wins)
	}
	if rep.Losses > 0 {
		rep.AvgLoss = rep.GrossLossAbs / float64(rep.Losses)
	}
	if rep.AvgLoss != 0 {
		rep.Rrr = rep.AvgWin / rep.AvgLoss
	}
	if rep.GrossLossAbs != 0 {
		rep.ProfitFactor = rep.GrossProfit / rep.GrossLossAbs
	}

	winProb := rep.WinRate / 100
	rep.Expectancy = winProb*rep.AvgWin - (1-winProb)*rep.AvgLoss

	rep.Sharpe = dailySharpe(daily)
	return rep
}

// dailySharpe treats each daily bucket's net pnl as one return sample and
// computes mean/stddev * sqrt(n) over them. Sample variance uses Bessel's
// correction (n-1). The statistic is day-granularity and not annualized;
// fewer than two day samples or zero deviation yields 0.
func dailySharpe(daily []models.DailyBucket) float64 {
	n := len(daily)
	if n < 2 {
		return 0
	}

	mean := 0.0
	for _, d := range daily {
		mean += d.NetPnl
	}
	mean /= float64(n)

	variance := 0.0
	for _, d := range daily {
		diff := d.NetPnl - mean
		variance += diff * diff
	}
	variance /= float64(n - 1)

	sigma := math.Sqrt(variance)
	if sigma == 0 {
		return 0
	}
	return mean / sigma * math.Sqrt(float64(n))
}
