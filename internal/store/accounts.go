package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"findash/internal/apperr"
	"findash/internal/models"

	"github.com/shopspring/decimal"
)

// CreateAccount inserts an account and fills in its id.
func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (name, account_type, balance, is_active) VALUES (?, ?, ?, ?)",
		a.Name, a.AccountType, a.Balance.String(), a.IsActive)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// GetAccount returns one account by id.
func (s *Store) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, account_type, balance, is_active FROM accounts WHERE id = ?", id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "account", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// FindAccountByName returns the account with the given name, or nil when
// there is none.
func (s *Store) FindAccountByName(ctx context.Context, name string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, account_type, balance, is_active FROM accounts WHERE name = ? LIMIT 1", name)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

// ListAccounts returns all active accounts.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, account_type, balance, is_active FROM accounts WHERE is_active = 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAccount(row interface {
	Scan(dest ...interface{}) error
}) (*models.Account, error) {
	var (
		a       models.Account
		balance string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.AccountType, &balance, &a.IsActive); err != nil {
		return nil, err
	}
	var err error
	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("decode balance %q: %w", balance, err)
	}
	return &a, nil
}
