package model

import (
	"database/sql"
	"errors"
	"time"

	"github.com/username/tradevault/backend/src/models"
)

// ErrAccountNotFound is returned when an account does not exist or belongs
// to another user.
var ErrAccountNotFound = errors.New("account not found")

func CreateAccount(db *sql.DB, account *models.Account) error {
	account.CreatedAt = time.Now()
	if account.BaseCurrency == "" {
		account.BaseCurrency = "USD"
	}

	query := `
	INSERT INTO accounts (user_id, name, starting_balance, base_currency, created_at)
	VALUES (?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		account.UserID,
		account.Name,
		account.StartingBalance,
		account.BaseCurrency,
		account.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	account.ID = id
	return nil
}

// GetAccountByID scopes the lookup to the owning user.
func GetAccountByID(db *sql.DB, id, userID int64) (*models.Account, error) {
	query := `
	SELECT id, user_id, name, starting_balance, base_currency, created_at
	FROM accounts
	WHERE id = ? AND user_id = ?`

	row := db.QueryRow(query, id, userID)
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&account.StartingBalance,
		&account.BaseCurrency,
		&account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func ListAccountsByUser(db *sql.DB, userID int64) ([]models.Account, error) {
	query := `
	SELECT id, user_id, name, starting_balance, base_currency, created_at
	FROM accounts
	WHERE user_id = ?
	ORDER BY created_at ASC, id ASC`

	rows, err := db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.Name,
			&account.StartingBalance,
			&account.BaseCurrency,
			&account.CreatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func UpdateAccount(db *sql.DB, account *models.Account) error {
	query := `
	UPDATE accounts
	SET name = ?, starting_balance = ?, base_currency = ?
	WHERE id = ? AND user_id = ?`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(account.Name, account.StartingBalance, account.BaseCurrency, account.ID, account.UserID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
