package report

import (
	"testing"
	"time"

	"github.com/username/tradevault/backend/src/models"
)

func TestBucketBySymbolFirstSeenOrder(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sorted := []models.TradeRecord{
		trade("a", base, models.OutcomeWin, 0),
		trade("b", base.Add(time.Hour), models.OutcomeLoss, 0),
		trade("c", base.Add(2*time.Hour), models.OutcomeLoss, 0),
		trade("d", base.Add(3*time.Hour), models.OutcomeWin, 0),
	}
	sorted[0].Instrument = "NQ"
	sorted[1].Instrument = "ES"
	sorted[2].Instrument = "NQ"
	sorted[3].Instrument = ""
	effs := []Effective{{Amount: 100}, {Amount: -40}, {Amount: -20}, {Amount: 5}}

	buckets := bucketBySymbol(sorted, effs)
	if len(buckets) != 3 {
		t.Fatalf("got %d buckets, want 3", len(buckets))
	}

	if buckets[0].Instrument != "NQ" || buckets[1].Instrument != "ES" || buckets[2].Instrument != unspecifiedInstrument {
		t.Fatalf("bucket order = %q, %q, %q", buckets[0].Instrument, buckets[1].Instrument, buckets[2].Instrument)
	}
	if buckets[0].TradeCount != 2 || buckets[0].NetPnl != 80 {
		t.Fatalf("NQ bucket = %+v", buckets[0])
	}
	if buckets[0].WinRate != 50 {
		t.Fatalf("NQ win rate = %v, want 50", buckets[0].WinRate)
	}
	if buckets[2].WinRate != 100 {
		t.Fatalf("unspecified win rate = %v, want 100", buckets[2].WinRate)
	}
}

// The journaled outcome drives per-symbol win rate even when the pnl sign
// disagrees with it.
func TestBucketBySymbolTrustsOutcome(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sorted := []models.TradeRecord{trade("a", base, models.OutcomeWin, -3)}
	sorted[0].Instrument = "CL"
	effs := []Effective{{Amount: -3}}

	buckets := bucketBySymbol(sorted, effs)
	if buckets[0].WinRate != 100 {
		t.Fatalf("win rate = %v, want 100", buckets[0].WinRate)
	}
}

func TestBucketByDayAscendingOrder(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sorted := []models.TradeRecord{
		trade("a", base, models.OutcomeWin, 10),
		trade("b", base.Add(time.Hour), models.OutcomeWin, 20),
		trade("c", base.AddDate(0, 0, 3), models.OutcomeLoss, -5),
	}
	effs := []Effective{{Amount: 10}, {Amount: 20}, {Amount: -5}}
	balances := []float64{1010, 1030, 1025}

	daily := bucketByDay(sorted, effs, balances, time.UTC)
	if len(daily) != 2 {
		t.Fatalf("got %d buckets, want 2", len(daily))
	}
	if daily[0].Date != "2026-03-02" || daily[0].TradeCount != 2 || daily[0].NetPnl != 30 || daily[0].EndingBalance != 1030 {
		t.Fatalf("first bucket = %+v", daily[0])
	}
	if daily[1].Date != "2026-03-05" || daily[1].EndingBalance != 1025 {
		t.Fatalf("second bucket = %+v", daily[1])
	}
}

func TestBestWorstDayTies(t *testing.T) {
	daily := []models.DailyBucket{
		{Date: "2026-03-02", NetPnl: 40},
		{Date: "2026-03-03", NetPnl: -40},
		{Date: "2026-03-04", NetPnl: 40},
		{Date: "2026-03-05", NetPnl: -40},
	}
	best, worst := bestWorstDay(daily)
	if best == nil || best.Date != "2026-03-02" {
		t.Fatalf("best = %+v, want 2026-03-02", best)
	}
	if worst == nil || worst.Date != "2026-03-03" {
		t.Fatalf("worst = %+v, want 2026-03-03", worst)
	}

	best, worst = bestWorstDay(nil)
	if best != nil || worst != nil {
		t.Fatalf("empty input: best = %v, worst = %v, want nil, nil", best, worst)
	}
}
