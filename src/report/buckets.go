package report

import (
	"time"

	"github.com/username/tradevault/backend/src/models"
)

// unspecifiedInstrument groups trades journaled without a symbol.
const unspecifiedInstrument = "unspecified"

const dayKeyLayout = "2006-01-02"

// bucketByDay folds the sorted batch into one bucket per zone-local
// calendar day that saw at least one trade. The day key is derived by
// projecting OpenedAt into loc and truncating to the date, so two trades
// minutes apart across midnight UTC can share a bucket or split depending
// on the zone. EndingBalance is the running balance from the equity walk
// as of the last trade of the day, which is why the buckets are built over
// the same chronological order and not independently.
func bucketByDay(sorted []models.TradeRecord, effs []Effective, balances []float64, loc *time.Location) []models.DailyBucket {
	daily := make([]models.DailyBucket, 0)
	index := make(map[string]int, len(sorted))

	for i, t := range sorted {
		key := t.OpenedAt.In(loc).Format(dayKeyLayout)
		at, ok := index[key]
		if !ok {
			at = len(daily)
			index[key] = at
			daily = append(daily, models.DailyBucket{Date: key})
		}
		daily[at].TradeCount++
		daily[at].NetPnl += effs[i].Amount
		daily[at].EndingBalance = balances[i]
	}
	return daily
}

// bucketBySymbol folds the sorted batch into one bucket per distinct
// instrument, in first-seen order. Per-bucket win rate counts the trader's
// own WIN classification, not the pnl sign.
func bucketBySymbol(sorted []models.TradeRecord, effs []Effective) []models.SymbolBucket {
	buckets := make([]models.SymbolBucket, 0)
	index := make(map[string]int)
	wins := make(map[string]int)

	for i, t := range sorted {
		key := t.Instrument
		if key == "" {
			key = unspecifiedInstrument
		}
		at, ok := index[key]
		if !ok {
			at = len(buckets)
			index[key] = at
			buckets = append(buckets, models.SymbolBucket{Instrument: key})
		}
		buckets[at].TradeCount++
		buckets[at].NetPnl += effs[i].Amount
		if t.Outcome == models.OutcomeWin {
			wins[key]++
		}
	}

	for i := range buckets {
		if buckets[i].TradeCount > 0 {
			buckets[i].WinRate = float64(wins[buckets[i].Instrument]) / float64(buckets[i].TradeCount) * 100
		}
	}
	return buckets
}

// bestWorstDay picks the daily buckets with the highest and lowest net pnl.
// daily is in ascending date order, so strict comparisons keep the earliest
// date on ties. Both are nil when the month had no trading days.
func bestWorstDay(daily []models.DailyBucket) (best, worst *models.DailyBucket) {
	if len(daily) == 0 {
		return nil, nil
	}
	b, w := daily[0], daily[0]
	for _, d := range daily[1:] {
		if d.NetPnl > b.NetPnl {
			b = d
		}
		if d.NetPnl < w.NetPnl {
			w = d
		}
	}
	return &b, &w
}
