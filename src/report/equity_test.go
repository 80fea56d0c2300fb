package report

import (
	"testing"
	"time"

	"github.com/username/tradevault/backend/src/models"
)

func TestSortTradesTieBreakByID(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	in := []models.TradeRecord{
		trade("b", base, models.OutcomeWin, 1),
		trade("a", base, models.OutcomeWin, 1),
		trade("c", base.Add(-time.Minute), models.OutcomeWin, 1),
	}

	sorted := sortTrades(in)

	wantOrder := []string{"c", "a", "b"}
	for i, id := range wantOrder {
		if sorted[i].ID != id {
			t.Fatalf("position %d: got %q, want %q", i, sorted[i].ID, id)
		}
	}
	if in[0].ID != "b" || in[1].ID != "a" || in[2].ID != "c" {
		t.Fatal("input slice was mutated")
	}
}

func TestProjectDrawdownWalk(t *testing.T) {
	tests := []struct {
		name        string
		start       float64
		amounts     []float64
		wantDd      float64
		wantDdPct   float64
		wantEnding  float64
	}{
		{
			name:       "no trades",
			start:      1000,
			wantEnding: 1000,
		},
		{
			name:       "monotonic up",
			start:      1000,
			amounts:    []float64{50, 25, 10},
			wantEnding: 1085,
		},
		{
			name:       "single dip after peak",
			start:      1000,
			amounts:    []float64{90, -50},
			wantDd:     50,
			wantDdPct:  50.0 / 1090 * 100,
			wantEnding: 1040,
		},
		{
			name:       "recovered drawdown is retained",
			start:      1000,
			amounts:    []float64{200, -300, 400},
			wantDd:     300,
			wantDdPct:  25,
			wantEnding: 1300,
		},
		{
			name:       "zero peak yields zero pct",
			start:      0,
			amounts:    []float64{-100},
			wantDd:     100,
			wantDdPct:  0,
			wantEnding: -100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
			sorted := make([]models.TradeRecord, len(tt.amounts))
			effs := make([]Effective, len(tt.amounts))
			for i, amt := range tt.amounts {
				sorted[i] = trade(string(rune('a'+i)), base.Add(time.Duration(i)*time.Hour), models.OutcomeWin, amt)
				effs[i] = Effective{Basis: BasisGross, Amount: amt}
			}

			p := project(sorted, effs, tt.start)
			if p.maxDrawdown != tt.wantDd {
				t.Fatalf("maxDrawdown = %v, want %v", p.maxDrawdown, tt.wantDd)
			}
			if p.maxDrawdownPct != tt.wantDdPct {
				t.Fatalf("maxDrawdownPct = %v, want %v", p.maxDrawdownPct, tt.wantDdPct)
			}
			if p.endingBalance != tt.wantEnding {
				t.Fatalf("endingBalance = %v, want %v", p.endingBalance, tt.wantEnding)
			}
			if p.maxDrawdown < 0 {
				t.Fatalf("drawdown went negative: %v", p.maxDrawdown)
			}
		})
	}
}

func TestProjectBalancesAlignWithWalk(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sorted := []models.TradeRecord{
		trade("a", base, models.OutcomeWin, 10),
		trade("b", base.Add(time.Hour), models.OutcomeLoss, -4),
	}
	effs := []Effective{{Amount: 10}, {Amount: -4}}

	p := project(sorted, effs, 100)
	want := []float64{110, 106}
	for i, b := range want {
		if p.balances[i] != b {
			t.Fatalf("balances[%d] = %v, want %v", i, p.balances[i], b)
		}
	}
}
