package models

import "time"

// Direction is the side a trade was opened on.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Outcome is the trader's own classification of a trade. It is advisory:
// a trade can be journaled as BREAKEVEN even with a nonzero pnl, and the
// report engine counts by this field rather than by the sign of the pnl.
type Outcome string

const (
	OutcomeWin       Outcome = "WIN"
	OutcomeLoss      Outcome = "LOSS"
	OutcomeBreakeven Outcome = "BREAKEVEN"
)

// TradeRecord is a single journaled trade as fed into the report engine.
// PnlAmount is always the gross figure; NetPnl and Commission only carry
// meaning once ReviewedAt is set. Optional numerics are pointers so that
// "unset" is distinguishable from 0.
type TradeRecord struct {
	ID         string     `json:"id"`
	OpenedAt   time.Time  `json:"opened_at"`
	Instrument string     `json:"instrument"`
	Direction  Direction  `json:"direction"`
	Outcome    Outcome    `json:"outcome"`
	PnlAmount  float64    `json:"pnl_amount"`
	PnlPercent float64    `json:"pnl_percent"`
	RiskAmount *float64   `json:"risk_amount,omitempty"`
	RMultiple  *float64   `json:"r_multiple,omitempty"`
	Commission *float64   `json:"commission,omitempty"`
	NetPnl     *float64   `json:"net_pnl,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// Trade is a TradeRecord as stored, with ownership and journal metadata.
type Trade struct {
	TradeRecord
	UserID    int64     `json:"user_id"`
	AccountID int64     `json:"account_id"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
