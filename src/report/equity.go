package report

import (
	"sort"

	"github.com/username/tradevault/backend/src/models"
)

// projection is the result of walking the equity curve over a sorted batch.
// balances is aligned index-for-index with the sorted trade slice so the
// day aggregator can read the running balance at any point of the walk.
type projection struct {
	balances       []float64
	maxDrawdown    float64
	maxDrawdownPct float64
	endingBalance  float64
}

// sortTrades orders a batch ascending by OpenedAt with ties broken by ID,
// so the walk is reproducible regardless of input order. The input slice is
// left untouched.
func sortTrades(trades []models.TradeRecord) []models.TradeRecord {
	sorted := make([]models.TradeRecord, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].OpenedAt.Equal(sorted[j].OpenedAt) {
			return sorted[i].OpenedAt.Before(sorted[j].OpenedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// project walks the running balance from startingBalance across the sorted
// trades, tracking the running peak and the worst peak-to-balance decline.
// Drawdown is measured trade by trade, not resampled to calendar time: a
// busy day can open and fully recover a drawdown within itself.
//
// The balance at each step is startingBalance plus the cumulative pnl summed
// from zero, the same accumulation the summary uses for netPnl, so the final
// balance equals startingBalance + netPnl bit-exactly.
func project(sorted []models.TradeRecord, effs []Effective, startingBalance float64) projection {
	p := projection{
		balances:      make([]float64, len(sorted)),
		endingBalance: startingBalance,
	}

	balance := startingBalance
	peak := startingBalance
	cum := 0.0
	for i := range sorted {
		cum += effs[i].Amount
		balance = startingBalance + cum
		if balance > peak {
			peak = balance
		}
		dd := peak - balance
		ddPct := 0.0
		if peak != 0 {
			ddPct = dd / peak * 100
		}
		if dd > p.maxDrawdown {
			p.maxDrawdown = dd
		}
		if ddPct > p.maxDrawdownPct {
			p.maxDrawdownPct = ddPct
		}
		p.balances[i] = balance
	}
	p.endingBalance = balance
	return p
}
