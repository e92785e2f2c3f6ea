// Package service is the operation facade every transport (HTTP, CLI) goes
// through. It composes the store, the rule engine, the importer, the
// catalog and the aggregator into the application's API surface.
package service

import (
	"context"
	"io"
	"strings"
	"time"

	"findash/internal/aggregate"
	"findash/internal/apperr"
	"findash/internal/catalog"
	"findash/internal/ingest"
	"findash/internal/logging"
	"findash/internal/models"
	"findash/internal/rules"
	"findash/internal/store"

	"golang.org/x/sync/errgroup"
)

// Service wires the application components behind one API surface.
type Service struct {
	store      *store.Store
	catalog    *catalog.Catalog
	engine     *rules.Engine
	importer   *ingest.Importer
	aggregator *aggregate.Aggregator
	log        logging.Logger
}

// New assembles a Service from its components.
func New(st *store.Store, cat *catalog.Catalog, engine *rules.Engine, importer *ingest.Importer, agg *aggregate.Aggregator, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		store:      st,
		catalog:    cat,
		engine:     engine,
		importer:   importer,
		aggregator: agg,
		log:        logger,
	}
}

// ListTransactions returns the transactions in the inclusive date range,
// optionally limited to one account, newest first.
func (s *Service) ListTransactions(ctx context.Context, start, end time.Time, accountID *int64) ([]models.Transaction, error) {
	if end.Before(start) {
		return nil, &apperr.ValidationError{Field: "end_date", Reason: "must not precede start_date"}
	}
	return s.store.ListTransactionsByRange(ctx, start, end, accountID)
}

// SetTransactionCategory assigns an existing category to a transaction and
// returns the updated transaction.
func (s *Service) SetTransactionCategory(ctx context.Context, txID, categoryID int64) (*models.Transaction, error) {
	return s.store.SetTransactionCategory(ctx, txID, categoryID)
}

// ListCategories returns every category definition.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.catalog.List(ctx)
}

// CreateCategory inserts a new category definition.
func (s *Service) CreateCategory(ctx context.Context, name, parent, sub string) (*models.Category, error) {
	return s.catalog.Create(ctx, name, parent, sub)
}

// ListAccounts returns the active accounts.
func (s *Service) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return s.store.ListAccounts(ctx)
}

// ImportCSV ingests a bank CSV export into the given account.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, accountID int64) (*models.ImportStats, error) {
	return s.importer.Import(ctx, r, accountID)
}

// ListRules returns every categorization rule in evaluation order.
func (s *Service) ListRules(ctx context.Context) ([]models.CategorizationRule, error) {
	return s.store.ListRules(ctx, false)
}

// CreateRule inserts a new categorization rule.
func (s *Service) CreateRule(ctx context.Context, keyword string, categoryID int64, matchField string) (*models.CategorizationRule, error) {
	rule := &models.CategorizationRule{
		Keyword:    strings.TrimSpace(keyword),
		CategoryID: categoryID,
		MatchField: models.MatchField(matchField),
		IsActive:   true,
	}
	if err := s.store.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// ReapplyRules runs the active rule set over every uncategorized
// transaction and returns the number updated.
func (s *Service) ReapplyRules(ctx context.Context) (int, error) {
	return s.engine.BulkReapply(ctx)
}

// RecategorizeRequest drives Recategorize. Exactly one of CategoryID or
// NewCategory must be set. When CreateRule is true, a rule binding the
// transaction's merchant (or, failing that, its description) to the chosen
// category is created after the assignment commits.
type RecategorizeRequest struct {
	TransactionID int64
	CategoryID    int64
	NewCategory   *models.Category
	CreateRule    bool
}

// RecategorizeResult reports what Recategorize did.
type RecategorizeResult struct {
	Transaction     *models.Transaction        `json:"transaction"`
	CreatedCategory *models.Category           `json:"created_category,omitempty"`
	CreatedRule     *models.CategorizationRule `json:"created_rule,omitempty"`
}

// Recategorize reassigns one transaction's category, optionally creating
// the category first. Category creation and assignment are atomic: a failed
// assignment rolls the new category back. Rule creation runs after the
// assignment has committed and is best-effort; its failure is logged, never
// propagated, and never undoes the assignment.
func (s *Service) Recategorize(ctx context.Context, req RecategorizeRequest) (*RecategorizeResult, error) {
	updated, created, err := s.store.RecategorizeTransaction(ctx, store.RecategorizeParams{
		TransactionID: req.TransactionID,
		CategoryID:    req.CategoryID,
		NewCategory:   req.NewCategory,
	})
	if err != nil {
		return nil, err
	}

	result := &RecategorizeResult{Transaction: updated, CreatedCategory: created}
	if !req.CreateRule {
		return result, nil
	}

	keyword, matchField := ruleKeywordFor(updated)
	if keyword == "" {
		s.log.Warn("Skipping rule creation: transaction has no merchant or description",
			logging.F("transaction_id", updated.ID))
		return result, nil
	}

	rule := &models.CategorizationRule{
		Keyword:    keyword,
		CategoryID: *updated.CategoryID,
		MatchField: matchField,
		IsActive:   true,
	}
	if err := s.store.CreateRule(ctx, rule); err != nil {
		s.log.WithError(err).Warn("Rule creation after recategorization failed",
			logging.F("transaction_id", updated.ID))
		return result, nil
	}
	result.CreatedRule = rule
	return result, nil
}

// ruleKeywordFor picks the keyword a recategorization-derived rule should
// match on: the merchant when present, the description otherwise.
func ruleKeywordFor(t *models.Transaction) (string, models.MatchField) {
	if m := strings.TrimSpace(t.Merchant); m != "" {
		return m, models.MatchMerchant
	}
	return strings.TrimSpace(t.Description), models.MatchDescription
}

// DashboardSummary is everything the dashboard needs for one date range:
// both direction trees, the monthly cashflow and the grand totals.
type DashboardSummary struct {
	Expenses *aggregate.CategoryTree    `json:"expenses"`
	Income   *aggregate.CategoryTree    `json:"income"`
	Cashflow []aggregate.CashflowBucket `json:"cashflow"`
	Totals   aggregate.Totals           `json:"totals"`
}

// Summarize builds the dashboard summary for the inclusive date range. The
// transaction range and the category catalog are fetched concurrently; both
// reads commute, no ordering is needed between them.
func (s *Service) Summarize(ctx context.Context, start, end time.Time, accountID *int64) (*DashboardSummary, []models.Category, error) {
	if end.Before(start) {
		return nil, nil, &apperr.ValidationError{Field: "end_date", Reason: "must not precede start_date"}
	}

	var (
		txs        []models.Transaction
		categories []models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.ListTransactionsByRange(gctx, start, end, accountID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.store.ListCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	summary := &DashboardSummary{
		Expenses: s.aggregator.BuildTree(txs, models.TypeDebit),
		Income:   s.aggregator.BuildTree(txs, models.TypeCredit),
		Cashflow: s.aggregator.Cashflow(txs),
		Totals:   s.aggregator.GrandTotals(txs),
	}
	return summary, categories, nil
}
