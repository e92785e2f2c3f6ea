package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"findash/internal/apperr"
	"findash/internal/logging"
	"findash/internal/models"

	"github.com/shopspring/decimal"
)

// dateLayout is the canonical calendar-day encoding used in the database.
const dateLayout = "2006-01-02"

const transactionColumns = `
	t.id, t.account_id, t.category_id, t.transaction_type, t.amount,
	t.description, t.merchant, t.date, t.category_parent_csv,
	t.import_batch, t.created_at,
	COALESCE(c.name, ''), COALESCE(c.parent_category, ''), COALESCE(c.sub_category, '')`

const transactionFrom = `
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTransaction(row interface {
	Scan(dest ...interface{}) error
}) (*models.Transaction, error) {
	var (
		t          models.Transaction
		categoryID sql.NullInt64
		amount     string
		date       string
		createdAt  string
	)
	err := row.Scan(
		&t.ID, &t.AccountID, &categoryID, &t.Type, &amount,
		&t.Description, &t.Merchant, &date, &t.CategoryParentCSV,
		&t.ImportBatch, &createdAt,
		&t.CategoryName, &t.ParentCategory, &t.SubCategory,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		id := categoryID.Int64
		t.CategoryID = &id
	}

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("decode amount %q: %w", amount, err)
	}

	t.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("decode date %q: %w", date, err)
	}

	t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("decode created_at %q: %w", createdAt, err)
	}

	return &t, nil
}

// InsertTransactionIfAbsent persists the transaction unless an existing row
// for the same account already matches on (date, amount, description). The
// duplicate check and the insert run inside one database transaction so two
// concurrent imports cannot both decide "not a duplicate" for the same row.
// It reports whether the row was inserted.
func (s *Store) InsertTransactionIfAbsent(ctx context.Context, t *models.Transaction) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after commit

	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM transactions
		WHERE account_id = ? AND date = ? AND amount = ? AND description = ?`,
		t.AccountID, t.Date.Format(dateLayout), t.Amount.String(), t.Description,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions
			(account_id, category_id, transaction_type, amount, description,
			 merchant, date, category_parent_csv, import_batch, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.AccountID, t.CategoryID, t.Type, t.Amount.String(), t.Description,
		t.Merchant, t.Date.Format(dateLayout), t.CategoryParentCSV,
		t.ImportBatch, t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert transaction: %w", err)
	}

	t.ID, err = res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit tx: %w", err)
	}
	return true, nil
}

// GetTransaction returns one transaction by id with resolved category labels.
func (s *Store) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT"+transactionColumns+transactionFrom+" WHERE t.id = ?", id)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "transaction", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactionsByRange returns transactions whose date falls inside the
// inclusive [start, end] range, newest first, optionally filtered by account.
func (s *Store) ListTransactionsByRange(ctx context.Context, start, end time.Time, accountID *int64) ([]models.Transaction, error) {
	query := "SELECT" + transactionColumns + transactionFrom +
		" WHERE t.date >= ? AND t.date <= ?"
	args := []interface{}{start.Format(dateLayout), end.Format(dateLayout)}
	if accountID != nil {
		query += " AND t.account_id = ?"
		args = append(args, *accountID)
	}
	query += " ORDER BY t.date DESC, t.id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// ListUncategorizedTransactions returns every transaction with no category,
// oldest first.
func (s *Store) ListUncategorizedTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT"+transactionColumns+transactionFrom+
			" WHERE t.category_id IS NULL ORDER BY t.id ASC")
	if err != nil {
		return nil, fmt.Errorf("list uncategorized: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// SetTransactionCategory assigns categoryID to the transaction and returns
// the updated row. It fails with NotFoundError when either id is unknown.
func (s *Store) SetTransactionCategory(ctx context.Context, txID, categoryID int64) (*models.Transaction, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET category_id = ? WHERE id = ?", categoryID, txID)
	if err != nil {
		return nil, fmt.Errorf("set category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, &apperr.NotFoundError{Entity: "transaction", ID: txID}
	}

	s.log.Debug("Transaction recategorized",
		logging.F("transaction_id", txID), logging.F("category_id", categoryID))

	return s.GetTransaction(ctx, txID)
}

// AssignCategoryIfUnset assigns categoryID only when the transaction still
// has no category. The compare-and-swap keeps bulk-reapply from ever
// overwriting a manual assignment. It reports whether the row changed.
func (s *Store) AssignCategoryIfUnset(ctx context.Context, txID, categoryID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET category_id = ? WHERE id = ? AND category_id IS NULL",
		categoryID, txID)
	if err != nil {
		return false, fmt.Errorf("assign category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
