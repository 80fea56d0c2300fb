package models

// DailyBucket aggregates the trades of one zone-local calendar day.
// Date is the local day formatted as YYYY-MM-DD. EndingBalance is the
// running account balance as of the last trade of that day.
type DailyBucket struct {
	Date          string  `json:"date"`
	TradeCount    int     `json:"trade_count"`
	NetPnl        float64 `json:"net_pnl"`
	EndingBalance float64 `json:"ending_balance"`
}

// SymbolBucket aggregates the trades of one instrument. Trades journaled
// without an instrument land in a single "unspecified" bucket.
type SymbolBucket struct {
	Instrument string  `json:"instrument"`
	TradeCount int     `json:"trade_count"`
	NetPnl     float64 `json:"net_pnl"`
	WinRate    float64 `json:"win_rate"`
}

// CoreReport is the full monthly performance report derived from one batch
// of trades. It is a transient value: built fresh per request, never stored.
//
// ProfitFactor and Rrr report 0 when their denominator is zero (no losing
// trades / zero average loss). That is a deliberate convention carried over
// from the journal's reporting history: an undefined ratio reads as 0, not
// as +Inf.
type CoreReport struct {
	TimeZone        string  `json:"time_zone"`
	StartingBalance float64 `json:"starting_balance"`
	EndingBalance   float64 `json:"ending_balance"`
	TotalTrades     int     `json:"total_trades"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	Breakeven       int     `json:"breakeven"`
	WinRate         float64 `json:"win_rate"`
	NetPnl          float64 `json:"net_pnl"`
	GrossProfit     float64 `json:"gross_profit"`
	GrossLossAbs    float64 `json:"gross_loss_abs"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	Rrr             float64 `json:"rrr"`
	Expectancy      float64 `json:"expectancy"`
	ProfitFactor    float64 `json:"profit_factor"`
	Sharpe          float64 `json:"sharpe"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	MaxDrawdownPct  float64 `json:"max_drawdown_pct"`

	BestDay  *DailyBucket `json:"best_day"`
	WorstDay *DailyBucket `json:"worst_day"`

	Daily    []DailyBucket  `json:"daily"`
	BySymbol []SymbolBucket `json:"by_symbol"`
}
