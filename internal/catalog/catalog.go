// Package catalog manages the category definitions transactions resolve
// against.
package catalog

import (
	"context"
	"strings"

	"findash/internal/apperr"
	"findash/internal/logging"
	"findash/internal/models"
)

// Store is the persistence surface the catalog needs.
type Store interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	FindCategory(ctx context.Context, name, parent, sub string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// Catalog exposes create/list operations over category definitions.
type Catalog struct {
	store Store
	log   logging.Logger
}

// New creates a Catalog backed by the given store.
func New(store Store, logger logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Catalog{store: store, log: logger}
}

// Create inserts a new category. It does not check for an existing
// identical triple; duplicate creation is an accepted risk and callers who
// want create-or-fetch semantics use GetOrCreate.
func (c *Catalog) Create(ctx context.Context, name, parent, sub string) (*models.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &apperr.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	category := &models.Category{
		Name:           strings.TrimSpace(name),
		ParentCategory: strings.TrimSpace(parent),
		SubCategory:    strings.TrimSpace(sub),
	}
	if err := c.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}

	c.log.Info("Category created",
		logging.F("id", category.ID),
		logging.F("name", category.Name),
		logging.F("parent", category.ParentCategory))
	return category, nil
}

// GetOrCreate returns the category matching the (name, parent, sub) triple,
// creating it when absent.
func (c *Catalog) GetOrCreate(ctx context.Context, name, parent, sub string) (*models.Category, error) {
	existing, err := c.store.FindCategory(ctx, name, parent, sub)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return c.Create(ctx, name, parent, sub)
}

// List returns every category definition.
func (c *Catalog) List(ctx context.Context) ([]models.Category, error) {
	return c.store.ListCategories(ctx)
}
