// Package rules implements keyword-based transaction categorization.
//
// Rules are evaluated in ascending creation order and the first match wins:
// a rule fires when its keyword is contained, case-insensitively, in the
// transaction field named by the rule's match field. The engine never
// overwrites an existing category assignment.
package rules

import (
	"context"
	"strings"

	"findash/internal/logging"
	"findash/internal/models"
)

// Store is the persistence surface the engine needs.
type Store interface {
	ListRules(ctx context.Context, activeOnly bool) ([]models.CategorizationRule, error)
	ListUncategorizedTransactions(ctx context.Context) ([]models.Transaction, error)
	AssignCategoryIfUnset(ctx context.Context, txID, categoryID int64) (bool, error)
}

// Engine applies categorization rules to transactions.
type Engine struct {
	store Store
	log   logging.Logger
}

// NewEngine creates a rule engine backed by the given store.
func NewEngine(store Store, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{store: store, log: logger}
}

// Apply returns the category of the first rule matching the transaction.
// Rules must already be in evaluation order (oldest first). Inactive rules
// and rules with a blank keyword never fire; the empty-keyword guard matters
// because an empty substring is trivially contained in every string.
func Apply(t *models.Transaction, ruleSet []models.CategorizationRule) (int64, bool) {
	for _, r := range ruleSet {
		if !r.IsActive {
			continue
		}
		keyword := strings.ToLower(strings.TrimSpace(r.Keyword))
		if keyword == "" {
			continue
		}

		var fieldValue string
		switch r.MatchField {
		case models.MatchMerchant:
			fieldValue = t.Merchant
		case models.MatchDescription:
			fieldValue = t.Description
		default:
			continue
		}
		if fieldValue == "" {
			continue
		}

		if strings.Contains(strings.ToLower(fieldValue), keyword) {
			return r.CategoryID, true
		}
	}
	return 0, false
}

// AssignIfUnset runs every given transaction that has no category through
// the active rule set and persists the first match. Used at the end of
// ingestion. Returns the number of transactions categorized.
func (e *Engine) AssignIfUnset(ctx context.Context, txs []models.Transaction) (int, error) {
	ruleSet, err := e.store.ListRules(ctx, true)
	if err != nil {
		return 0, err
	}
	if len(ruleSet) == 0 {
		return 0, nil
	}
	return e.AssignIfUnsetWithRules(ctx, txs, ruleSet)
}

// BulkReapply scans all currently uncategorized transactions and applies the
// active rule set. Transactions that already carry a category are never
// touched: the scan itself only selects NULL-category rows and the write is
// a compare-and-swap on the category field. Returns the number updated.
func (e *Engine) BulkReapply(ctx context.Context) (int, error) {
	ruleSet, err := e.store.ListRules(ctx, true)
	if err != nil {
		return 0, err
	}

	txs, err := e.store.ListUncategorizedTransactions(ctx)
	if err != nil {
		return 0, err
	}

	updated, err := e.AssignIfUnsetWithRules(ctx, txs, ruleSet)
	if err != nil {
		return updated, err
	}

	e.log.Info("Rules reapplied",
		logging.F("scanned", len(txs)), logging.F("updated", updated))
	return updated, nil
}

// AssignIfUnsetWithRules is AssignIfUnset with a caller-provided rule set,
// so bulk operations list rules once.
func (e *Engine) AssignIfUnsetWithRules(ctx context.Context, txs []models.Transaction, ruleSet []models.CategorizationRule) (int, error) {
	updated := 0
	for i := range txs {
		t := &txs[i]
		if t.CategoryID != nil {
			continue
		}
		categoryID, ok := Apply(t, ruleSet)
		if !ok {
			continue
		}
		changed, err := e.store.AssignCategoryIfUnset(ctx, t.ID, categoryID)
		if err != nil {
			return updated, err
		}
		if changed {
			t.CategoryID = &categoryID
			updated++
		}
	}
	return updated, nil
}
