// backend/src/services/stores.go
package services

import (
	"database/sql"
	"time"

	"github.com/username/tradevault/backend/src/model"
	"github.com/username/tradevault/backend/src/models"
)

// SQLTradeStore backs TradeStore with the sqlite trades table.
type SQLTradeStore struct {
	DB *sql.DB
}

func (s SQLTradeStore) ListTrades(userID, accountID int64, start, end time.Time) ([]models.Trade, error) {
	return model.ListTrades(s.DB, userID, accountID, start, end)
}

func (s SQLTradeStore) ListTradesBefore(userID, accountID int64, before time.Time) ([]models.Trade, error) {
	return model.ListTradesBefore(s.DB, userID, accountID, before)
}

// SQLAccountStore backs AccountStore with the sqlite accounts table.
type SQLAccountStore struct {
	DB *sql.DB
}

func (s SQLAccountStore) GetAccountByID(id, userID int64) (*models.Account, error) {
	return model.GetAccountByID(s.DB, id, userID)
}

func (s SQLAccountStore) ListAccountsByUser(userID int64) ([]models.Account, error) {
	return model.ListAccountsByUser(s.DB, userID)
}

// SQLUserPrefs reads per-user settings from the users table.
type SQLUserPrefs struct {
	DB *sql.DB
}

func (s SQLUserPrefs) GetUserTimeZone(userID int64) (string, error) {
	user, err := model.GetUserByID(s.DB, userID)
	if err != nil {
		return "", err
	}
	return user.TimeZone, nil
}
