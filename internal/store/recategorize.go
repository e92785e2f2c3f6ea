package store

import (
	"context"
	"fmt"

	"findash/internal/apperr"
	"findash/internal/logging"
	"findash/internal/models"
)

// RecategorizeParams drives RecategorizeTransaction. When NewCategory is
// set, the category is created and assigned in the same unit; otherwise
// CategoryID names an existing category.
type RecategorizeParams struct {
	TransactionID int64
	CategoryID    int64
	NewCategory   *models.Category
}

// RecategorizeTransaction atomically creates the optional new category and
// assigns the resulting (or caller-chosen) category to one transaction.
// Both steps run in a single database transaction: a failed assignment
// rolls the category creation back, so the transaction can never point at a
// category that failed to persist.
func (s *Store) RecategorizeTransaction(ctx context.Context, p RecategorizeParams) (*models.Transaction, *models.Category, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after commit

	categoryID := p.CategoryID
	var created *models.Category

	if p.NewCategory != nil {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO categories (name, parent_category, sub_category) VALUES (?, ?, ?)",
			p.NewCategory.Name, p.NewCategory.ParentCategory, p.NewCategory.SubCategory)
		if err != nil {
			return nil, nil, fmt.Errorf("create category: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, nil, fmt.Errorf("last insert id: %w", err)
		}
		c := *p.NewCategory
		c.ID = id
		created = &c
		categoryID = id
	} else {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM categories WHERE id = ?", categoryID).Scan(&exists)
		if err != nil {
			return nil, nil, fmt.Errorf("check category: %w", err)
		}
		if exists == 0 {
			return nil, nil, &apperr.NotFoundError{Entity: "category", ID: categoryID}
		}
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE transactions SET category_id = ? WHERE id = ?", categoryID, p.TransactionID)
	if err != nil {
		if created != nil {
			return nil, nil, &apperr.ConsistencyError{Operation: "recategorize", Err: err}
		}
		return nil, nil, fmt.Errorf("assign category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil, &apperr.NotFoundError{Entity: "transaction", ID: p.TransactionID}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit tx: %w", err)
	}

	s.log.Info("Transaction recategorized",
		logging.F("transaction_id", p.TransactionID),
		logging.F("category_id", categoryID),
		logging.F("category_created", created != nil))

	updated, err := s.GetTransaction(ctx, p.TransactionID)
	if err != nil {
		return nil, created, err
	}
	return updated, created, nil
}
