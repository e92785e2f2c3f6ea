package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"findash/internal/apperr"
	"findash/internal/models"
)

// CreateRule inserts a categorization rule and fills in its id. Empty
// keywords are rejected here so an empty substring can never become a
// match-everything rule, and the match field must be one of the two
// recognized values.
func (s *Store) CreateRule(ctx context.Context, r *models.CategorizationRule) error {
	if strings.TrimSpace(r.Keyword) == "" {
		return &apperr.ValidationError{Field: "keyword", Reason: "must not be empty"}
	}
	if !models.ValidMatchField(string(r.MatchField)) {
		return &apperr.ValidationError{
			Field:  "match_field",
			Reason: fmt.Sprintf("must be %q or %q", models.MatchDescription, models.MatchMerchant),
		}
	}
	if _, err := s.GetCategory(ctx, r.CategoryID); err != nil {
		return err
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categorization_rules (keyword, category_id, match_field, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.Keyword, r.CategoryID, r.MatchField, r.IsActive, r.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// ListRules returns rules in evaluation order: ascending creation time,
// ties broken by id. With activeOnly set, inactive rules are skipped.
func (s *Store) ListRules(ctx context.Context, activeOnly bool) ([]models.CategorizationRule, error) {
	query := `
		SELECT id, keyword, category_id, match_field, is_active, created_at
		FROM categorization_rules`
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []models.CategorizationRule
	for rows.Next() {
		var (
			r         models.CategorizationRule
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.Keyword, &r.CategoryID, &r.MatchField, &r.IsActive, &createdAt); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("decode created_at %q: %w", createdAt, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
