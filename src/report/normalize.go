package report

import (
	"math"

	"github.com/username/tradevault/backend/src/models"
)

// Basis says which pnl figure an Effective value was resolved from.
type Basis int

const (
	// BasisGross means the trade has not been reviewed and its raw pnl is used.
	BasisGross Basis = iota
	// BasisNet means the trade was reviewed and its commission-adjusted figure is used.
	BasisNet
)

// Effective is a trade's pnl as consumed by all aggregate math: the
// commission-adjusted net figure once the trade has been reviewed, the
// gross figure otherwise. Amount and Percent are always finite.
type Effective struct {
	Basis   Basis
	Amount  float64
	Percent float64
}

// finite collapses NaN and ±Inf to 0 so malformed numeric input can never
// leak into downstream arithmetic.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Normalize resolves the effective pnl of a single trade.
//
// Unreviewed trades keep their gross figures. Reviewed trades use the
// caller's cached net pnl when present and finite, falling back to gross
// minus commission (commission defaults to 0 when absent). The percent
// figure is rescaled by the net/gross ratio; when the gross pnl is exactly
// 0 the percent passes through unchanged.
func Normalize(t models.TradeRecord) Effective {
	gross := finite(t.PnlAmount)
	pct := finite(t.PnlPercent)

	if t.ReviewedAt == nil {
		return Effective{Basis: BasisGross, Amount: gross, Percent: pct}
	}

	commission := 0.0
	if t.Commission != nil {
		commission = finite(*t.Commission)
	}

	amount := gross - commission
	if t.NetPnl != nil && !math.IsNaN(*t.NetPnl) && !math.IsInf(*t.NetPnl, 0) {
		amount = *t.NetPnl
	}

	if gross != 0 {
		pct = finite(pct * (amount / gross))
	}

	return Effective{Basis: BasisNet, Amount: finite(amount), Percent: pct}
}
