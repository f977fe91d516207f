// Package accounts manages trading accounts and resolves the account a new
// trade belongs to.
package accounts

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhixing/journal/internal/domain"
)

// Repository handles account database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new account repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "accounts").Logger(),
	}
}

const accountColumns = `id, name, broker, currency, initial_balance, created_at, updated_at`

// GetByID retrieves an account by id
func (r *Repository) GetByID(id string) (*domain.Account, error) {
	row := r.db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &account, nil
}

// List returns all accounts ordered by creation time
func (r *Repository) List() ([]domain.Account, error) {
	rows, err := r.db.Query("SELECT " + accountColumns + " FROM accounts ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// Save upserts an account
func (r *Repository) Save(account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			broker = excluded.broker,
			currency = excluded.currency,
			initial_balance = excluded.initial_balance,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		account.ID,
		account.Name,
		account.Broker,
		account.Currency,
		account.InitialBalance,
		account.CreatedAt.Unix(),
		account.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	r.log.Debug().Str("id", account.ID).Str("name", account.Name).Msg("Account saved")
	return nil
}

// Delete removes an account
func (r *Repository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	r.log.Info().Str("id", id).Msg("Account deleted")
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var account domain.Account
	var broker, currency sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&account.ID,
		&account.Name,
		&broker,
		&currency,
		&account.InitialBalance,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return account, err
	}

	account.Broker = broker.String
	account.Currency = currency.String
	account.CreatedAt = unixTime(createdAt)
	account.UpdatedAt = unixTime(updatedAt)

	return account, nil
}
