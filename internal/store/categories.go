package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"findash/internal/apperr"
	"findash/internal/models"
)

// CreateCategory inserts a category and fills in its id. There is no
// uniqueness check on (name, parent, sub); duplicate creation is tolerated.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (name, parent_category, sub_category) VALUES (?, ?, ?)",
		c.Name, c.ParentCategory, c.SubCategory)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// GetCategory returns one category by id.
func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, parent_category, sub_category FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.ParentCategory, &c.SubCategory)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Entity: "category", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// FindCategory looks a category up by its exact (name, parent, sub) triple.
// When duplicates exist the oldest one wins.
func (s *Store) FindCategory(ctx context.Context, name, parent, sub string) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, parent_category, sub_category FROM categories
		WHERE name = ? AND parent_category = ? AND sub_category = ?
		ORDER BY id ASC LIMIT 1`, name, parent, sub).
		Scan(&c.ID, &c.Name, &c.ParentCategory, &c.SubCategory)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &c, nil
}

// ListCategories returns every category, ordered by the grouping labels.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, parent_category, sub_category FROM categories
		ORDER BY parent_category, sub_category, name, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentCategory, &c.SubCategory); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
