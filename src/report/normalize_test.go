package report

import (
	"math"
	"testing"
	"time"

	"github.com/username/tradevault/backend/src/models"
)

func TestNormalize(t *testing.T) {
	reviewed := tptr(time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC))

	tests := []struct {
		name        string
		trade       models.TradeRecord
		wantBasis   Basis
		wantAmount  float64
		wantPercent float64
	}{
		{
			name:        "unreviewed keeps gross",
			trade:       models.TradeRecord{PnlAmount: 100, PnlPercent: 2.5},
			wantBasis:   BasisGross,
			wantAmount:  100,
			wantPercent: 2.5,
		},
		{
			name:        "unreviewed ignores stale net fields",
			trade:       models.TradeRecord{PnlAmount: 100, PnlPercent: 2, NetPnl: fptr(90), Commission: fptr(10)},
			wantBasis:   BasisGross,
			wantAmount:  100,
			wantPercent: 2,
		},
		{
			name:        "reviewed uses cached net pnl",
			trade:       models.TradeRecord{PnlAmount: 100, PnlPercent: 2, NetPnl: fptr(85), ReviewedAt: reviewed},
			wantBasis:   BasisNet,
			wantAmount:  85,
			wantPercent: 1.7, // 2 * 85/100
		},
		{
			name:        "reviewed falls back to gross minus commission",
			trade:       models.TradeRecord{PnlAmount: 100, PnlPercent: 2, Commission: fptr(10), ReviewedAt: reviewed},
			wantBasis:   BasisNet,
			wantAmount:  90,
			wantPercent: 1.8,
		},
		{
			name:        "reviewed without commission defaults to 0",
			trade:       models.TradeRecord{PnlAmount: -50, PnlPercent: -1, ReviewedAt: reviewed},
			wantBasis:   BasisNet,
			wantAmount:  -50,
			wantPercent: -1,
		},
		{
			name:        "zero gross pnl keeps percent unchanged",
			trade:       models.TradeRecord{PnlAmount: 0, PnlPercent: -0.4, Commission: fptr(5), ReviewedAt: reviewed},
			wantBasis:   BasisNet,
			wantAmount:  -5,
			wantPercent: -0.4,
		},
		{
			name:        "NaN gross collapses to 0",
			trade:       models.TradeRecord{PnlAmount: math.NaN(), PnlPercent: 1},
			wantBasis:   BasisGross,
			wantAmount:  0,
			wantPercent: 1,
		},
		{
			name:        "infinite net pnl is ignored in favor of the fallback",
			trade:       models.TradeRecord{PnlAmount: 100, PnlPercent: 2, NetPnl: fptr(math.Inf(1)), Commission: fptr(10), ReviewedAt: reviewed},
			wantBasis:   BasisNet,
			wantAmount:  90,
			wantPercent: 1.8,
		},
		{
			name:        "non-finite commission defaults to 0",
			trade:       models.TradeRecord{PnlAmount: 100, PnlPercent: 2, Commission: fptr(math.NaN()), ReviewedAt: reviewed},
			wantBasis:   BasisNet,
			wantAmount:  100,
			wantPercent: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.trade)
			if got.Basis != tt.wantBasis {
				t.Fatalf("basis = %v, want %v", got.Basis, tt.wantBasis)
			}
			if got.Amount != tt.wantAmount {
				t.Fatalf("amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if math.Abs(got.Percent-tt.wantPercent) > 1e-9 {
				t.Fatalf("percent = %v, want %v", got.Percent, tt.wantPercent)
			}
		})
	}
}

func TestNormalizeNeverReturnsNonFinite(t *testing.T) {
	reviewed := tptr(time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC))
	nasty := []models.TradeRecord{
		{PnlAmount: math.NaN(), PnlPercent: math.Inf(-1)},
		{PnlAmount: math.Inf(1), PnlPercent: math.NaN(), ReviewedAt: reviewed},
		{PnlAmount: 0, PnlPercent: math.Inf(1), NetPnl: fptr(math.NaN()), Commission: fptr(math.Inf(-1)), ReviewedAt: reviewed},
	}
	for i, tr := range nasty {
		eff := Normalize(tr)
		if math.IsNaN(eff.Amount) || math.IsInf(eff.Amount, 0) {
			t.Fatalf("case %d: non-finite amount %v", i, eff.Amount)
		}
		if math.IsNaN(eff.Percent) || math.IsInf(eff.Percent, 0) {
			t.Fatalf("case %d: non-finite percent %v", i, eff.Percent)
		}
	}
}
