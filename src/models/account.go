package models

import "time"

// Account is a trading account a user journals against. BaseCurrency is a
// display label only; no conversion happens anywhere in the backend.
type Account struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Name            string    `json:"name"`
	StartingBalance float64   `json:"starting_balance"`
	BaseCurrency    string    `json:"base_currency"`
	CreatedAt       time.Time `json:"created_at"`
}
