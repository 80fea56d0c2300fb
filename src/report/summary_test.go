package report

import (
	"math"
	"testing"
	"time"

	"github.com/username/tradevault/backend/src/models"
)

func TestDailySharpe(t *testing.T) {
	days := func(pnls ...float64) []models.DailyBucket {
		out := make([]models.DailyBucket, len(pnls))
		for i, p := range pnls {
			out[i] = models.DailyBucket{NetPnl: p}
		}
		return out
	}

	tests := []struct {
		name  string
		daily []models.DailyBucket
		want  float64
	}{
		{name: "no days", daily: nil, want: 0},
		{name: "single day", daily: days(120), want: 0},
		{name: "zero deviation", daily: days(50, 50, 50), want: 0},
		// mean 10, sample stddev sqrt(200)=10*sqrt2, times sqrt(2): exactly 1
		{name: "two days", daily: days(0, 20), want: 1},
		// mean 20, sample stddev 20, sqrt(3) factor
		{name: "three days", daily: days(0, 20, 40), want: math.Sqrt(3)},
		// mean -20, sample stddev 10*sqrt2, times sqrt(2): exactly -2
		{name: "losing month goes negative", daily: days(-30, -10), want: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dailySharpe(tt.daily)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("dailySharpe = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarizeZeroFallbacks(t *testing.T) {
	rep := summarize(nil, nil, projection{endingBalance: 100}, nil)
	if rep.WinRate != 0 || rep.AvgWin != 0 || rep.AvgLoss != 0 || rep.Rrr != 0 || rep.ProfitFactor != 0 || rep.Expectancy != 0 || rep.Sharpe != 0 {
		t.Fatalf("expected all-zero ratios, got %+v", rep)
	}
	if rep.EndingBalance != 100 {
		t.Fatalf("endingBalance = %v, want 100", rep.EndingBalance)
	}
}

func TestSummarizeCountsByOutcome(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sorted := []models.TradeRecord{
		trade("a", base, models.OutcomeBreakeven, 4),
		trade("b", base.Add(time.Hour), models.OutcomeWin, 50),
		trade("c", base.Add(2*time.Hour), models.OutcomeLoss, -25),
	}
	effs := []Effective{{Amount: 4}, {Amount: 50}, {Amount: -25}}

	rep := summarize(sorted, effs, projection{}, nil)
	if rep.Wins != 1 || rep.Losses != 1 || rep.Breakeven != 1 {
		t.Fatalf("counts = %d/%d/%d, want 1/1/1", rep.Wins, rep.Losses, rep.Breakeven)
	}
	// gross sums follow the pnl sign, so the breakeven's +4 lands in profit
	if rep.GrossProfit != 54 {
		t.Fatalf("grossProfit = %v, want 54", rep.GrossProfit)
	}
	if rep.AvgWin != 54 {
		t.Fatalf("avgWin = %v, want 54", rep.AvgWin)
	}
}
