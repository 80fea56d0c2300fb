package model

import (
	"database/sql"
	"errors"
	"time"

	"github.com/username/tradevault/backend/src/models"
)

// ErrTradeNotFound is returned when a trade does not exist or belongs to
// another user.
var ErrTradeNotFound = errors.New("trade not found")

const tradeColumns = `id, user_id, account_id, opened_at, instrument, direction, outcome,
       pnl_amount, pnl_percent, risk_amount, r_multiple, commission, net_pnl,
       reviewed_at, note, created_at, updated_at`

func CreateTrade(db *sql.DB, trade *models.Trade) error {
	now := time.Now()
	trade.CreatedAt = now
	trade.UpdatedAt = now

	query := `
	INSERT INTO trades (` + tradeColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		trade.ID,
		trade.UserID,
		trade.AccountID,
		trade.OpenedAt,
		trade.Instrument,
		string(trade.Direction),
		string(trade.Outcome),
		trade.PnlAmount,
		trade.PnlPercent,
		nullFloat(trade.RiskAmount),
		nullFloat(trade.RMultiple),
		nullFloat(trade.Commission),
		nullFloat(trade.NetPnl),
		nullTime(trade.ReviewedAt),
		trade.Note,
		trade.CreatedAt,
		trade.UpdatedAt,
	)
	return err
}

func GetTradeByID(db *sql.DB, id string, userID int64) (*models.Trade, error) {
	row := db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE id = ? AND user_id = ?`, id, userID)
	trade, err := scanTrade(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}
	return trade, nil
}

// ListTrades returns the user's trades with OpenedAt in the half-open
// interval [start, end). accountID 0 spans all of the user's accounts.
// Rows come back ordered by opened_at then id, matching the report engine's
// internal ordering so listings and reports agree.
func ListTrades(db *sql.DB, userID, accountID int64, start, end time.Time) ([]models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE user_id = ? AND opened_at >= ? AND opened_at < ?`
	args := []interface{}{userID, start, end}
	if accountID != 0 {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY opened_at ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]models.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows.Scan)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}

// ListTradesBefore returns all trades with OpenedAt strictly before the
// given instant. The report service folds these into the month's starting
// balance.
func ListTradesBefore(db *sql.DB, userID, accountID int64, before time.Time) ([]models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE user_id = ? AND opened_at < ?`
	args := []interface{}{userID, before}
	if accountID != 0 {
		query += ` AND account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY opened_at ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]models.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows.Scan)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *trade)
	}
	return trades, rows.Err()
}

func UpdateTrade(db *sql.DB, trade *models.Trade) error {
	trade.UpdatedAt = time.Now()

	query := `
	UPDATE trades
	SET account_id = ?, opened_at = ?, instrument = ?, direction = ?, outcome = ?,
	    pnl_amount = ?, pnl_percent = ?, risk_amount = ?, r_multiple = ?,
	    commission = ?, net_pnl = ?, reviewed_at = ?, note = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		trade.AccountID,
		trade.OpenedAt,
		trade.Instrument,
		string(trade.Direction),
		string(trade.Outcome),
		trade.PnlAmount,
		trade.PnlPercent,
		nullFloat(trade.RiskAmount),
		nullFloat(trade.RMultiple),
		nullFloat(trade.Commission),
		nullFloat(trade.NetPnl),
		nullTime(trade.ReviewedAt),
		trade.Note,
		trade.UpdatedAt,
		trade.ID,
		trade.UserID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTradeNotFound
	}
	return nil
}

func DeleteTrade(db *sql.DB, id string, userID int64) error {
	stmt, err := db.Prepare(`DELETE FROM trades WHERE id = ? AND user_id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTradeNotFound
	}
	return nil
}

// MarkTradeReviewed records the review outcome: the broker-confirmed
// commission and net pnl (either may be absent) and the review timestamp.
func MarkTradeReviewed(db *sql.DB, id string, userID int64, commission, netPnl *float64, reviewedAt time.Time) error {
	query := `
	UPDATE trades
	SET commission = ?, net_pnl = ?, reviewed_at = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(nullFloat(commission), nullFloat(netPnl), reviewedAt, time.Now(), id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTradeNotFound
	}
	return nil
}

func scanTrade(scan func(dest ...interface{}) error) (*models.Trade, error) {
	var trade models.Trade
	var direction, outcome string
	var riskAmount, rMultiple, commission, netPnl sql.NullFloat64
	var reviewedAt sql.NullTime
	var note sql.NullString

	err := scan(
		&trade.ID,
		&trade.UserID,
		&trade.AccountID,
		&trade.OpenedAt,
		&trade.Instrument,
		&direction,
		&outcome,
		&trade.PnlAmount,
		&trade.PnlPercent,
		&riskAmount,
		&rMultiple,
		&commission,
		&netPnl,
		&reviewedAt,
		&note,
		&trade.CreatedAt,
		&trade.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	trade.Direction = models.Direction(direction)
	trade.Outcome = models.Outcome(outcome)
	trade.RiskAmount = floatPtr(riskAmount)
	trade.RMultiple = floatPtr(rMultiple)
	trade.Commission = floatPtr(commission)
	trade.NetPnl = floatPtr(netPnl)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		trade.ReviewedAt = &t
	}
	trade.Note = note.String
	return &trade, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
