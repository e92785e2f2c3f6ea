package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"findash/internal/apperr"
	"findash/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestAccount(t *testing.T, s *Store) *models.Account {
	t.Helper()
	a := &models.Account{Name: "Test Account", AccountType: "checking", IsActive: true}
	require.NoError(t, s.CreateAccount(context.Background(), a))
	return a
}

func newTestCategory(t *testing.T, s *Store, name, parent, sub string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, ParentCategory: parent, SubCategory: sub}
	require.NoError(t, s.CreateCategory(context.Background(), c))
	return c
}

func newTestTransaction(account int64, date, amount, description string) *models.Transaction {
	d, _ := time.Parse("2006-01-02", date)
	a := decimal.RequireFromString(amount)
	return &models.Transaction{
		AccountID:   account,
		Type:        models.TypeFromAmount(a),
		Amount:      a,
		Description: description,
		Date:        d,
	}
}

func TestInsertTransactionDeduplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := newTestAccount(t, s)

	tx := newTestTransaction(account.ID, "2025-03-01", "-42.50", "CARREFOUR MARKET")
	inserted, err := s.InsertTransactionIfAbsent(ctx, tx)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, tx.ID)

	// Same (account, date, amount, description) is a duplicate.
	dup := newTestTransaction(account.ID, "2025-03-01", "-42.50", "CARREFOUR MARKET")
	inserted, err = s.InsertTransactionIfAbsent(ctx, dup)
	require.NoError(t, err)
	assert.False(t, inserted)

	// Any differing key component is a distinct row.
	other := newTestTransaction(account.ID, "2025-03-02", "-42.50", "CARREFOUR MARKET")
	inserted, err = s.InsertTransactionIfAbsent(ctx, other)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same row on another account is not a duplicate either.
	account2 := &models.Account{Name: "Other", AccountType: "savings", IsActive: true}
	require.NoError(t, s.CreateAccount(ctx, account2))
	cross := newTestTransaction(account2.ID, "2025-03-01", "-42.50", "CARREFOUR MARKET")
	inserted, err = s.InsertTransactionIfAbsent(ctx, cross)
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestListTransactionsByRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := newTestAccount(t, s)

	for _, d := range []string{"2025-02-28", "2025-03-01", "2025-03-15", "2025-03-31", "2025-04-01"} {
		_, err := s.InsertTransactionIfAbsent(ctx, newTestTransaction(account.ID, d, "-10.00", "TX "+d))
		require.NoError(t, err)
	}

	start, _ := time.Parse("2006-01-02", "2025-03-01")
	end, _ := time.Parse("2006-01-02", "2025-03-31")
	txs, err := s.ListTransactionsByRange(ctx, start, end, nil)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	// Range bounds are inclusive and ordering is newest first.
	assert.Equal(t, "TX 2025-03-31", txs[0].Description)
	assert.Equal(t, "TX 2025-03-01", txs[2].Description)

	// Account filter.
	other := &models.Account{Name: "Other", AccountType: "savings", IsActive: true}
	require.NoError(t, s.CreateAccount(ctx, other))
	filtered, err := s.ListTransactionsByRange(ctx, start, end, &other.ID)
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestSetTransactionCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := newTestAccount(t, s)
	category := newTestCategory(t, s, "Courses", "Vie quotidienne", "Alimentation")

	tx := newTestTransaction(account.ID, "2025-03-01", "-42.50", "CARREFOUR")
	_, err := s.InsertTransactionIfAbsent(ctx, tx)
	require.NoError(t, err)

	updated, err := s.SetTransactionCategory(ctx, tx.ID, category.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, category.ID, *updated.CategoryID)
	assert.Equal(t, "Courses", updated.CategoryName)
	assert.Equal(t, "Vie quotidienne", updated.ParentCategory)

	_, err = s.SetTransactionCategory(ctx, 9999, category.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = s.SetTransactionCategory(ctx, tx.ID, 9999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestAssignCategoryIfUnset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := newTestAccount(t, s)
	catA := newTestCategory(t, s, "Courses", "Vie quotidienne", "Alimentation")
	catB := newTestCategory(t, s, "Restaurant", "Vie quotidienne", "Restauration")

	tx := newTestTransaction(account.ID, "2025-03-01", "-42.50", "CARREFOUR")
	_, err := s.InsertTransactionIfAbsent(ctx, tx)
	require.NoError(t, err)

	changed, err := s.AssignCategoryIfUnset(ctx, tx.ID, catA.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	// Second assignment is a no-op: the category is already set.
	changed, err = s.AssignCategoryIfUnset(ctx, tx.ID, catB.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, catA.ID, *got.CategoryID)
}

func TestCreateRuleValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	category := newTestCategory(t, s, "Courses", "Vie quotidienne", "Alimentation")

	err := s.CreateRule(ctx, &models.CategorizationRule{
		Keyword: "  ", CategoryID: category.ID, MatchField: models.MatchDescription, IsActive: true})
	assert.True(t, apperr.IsValidation(err))

	err = s.CreateRule(ctx, &models.CategorizationRule{
		Keyword: "CARREFOUR", CategoryID: category.ID, MatchField: "amount", IsActive: true})
	assert.True(t, apperr.IsValidation(err))

	err = s.CreateRule(ctx, &models.CategorizationRule{
		Keyword: "CARREFOUR", CategoryID: 9999, MatchField: models.MatchDescription, IsActive: true})
	assert.True(t, apperr.IsNotFound(err))

	rule := &models.CategorizationRule{
		Keyword: "CARREFOUR", CategoryID: category.ID, MatchField: models.MatchDescription, IsActive: true}
	require.NoError(t, s.CreateRule(ctx, rule))
	assert.NotZero(t, rule.ID)
}

func TestListRulesEvaluationOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	category := newTestCategory(t, s, "Courses", "Vie quotidienne", "Alimentation")

	for _, kw := range []string{"CARR", "CARREFOUR", "MONOPRIX"} {
		require.NoError(t, s.CreateRule(ctx, &models.CategorizationRule{
			Keyword: kw, CategoryID: category.ID, MatchField: models.MatchDescription, IsActive: true}))
	}

	ruleSet, err := s.ListRules(ctx, true)
	require.NoError(t, err)
	require.Len(t, ruleSet, 3)
	assert.Equal(t, "CARR", ruleSet[0].Keyword)
	assert.Equal(t, "CARREFOUR", ruleSet[1].Keyword)
	assert.Equal(t, "MONOPRIX", ruleSet[2].Keyword)
}

func TestFindCategoryOldestWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Duplicate triples are tolerated on creation; lookups return the
	// oldest one.
	first := newTestCategory(t, s, "Courses", "Vie quotidienne", "Alimentation")
	_ = newTestCategory(t, s, "Courses", "Vie quotidienne", "Alimentation")

	found, err := s.FindCategory(ctx, "Courses", "Vie quotidienne", "Alimentation")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	missing, err := s.FindCategory(ctx, "Nope", "", "")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRecategorizeWithNewCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := newTestAccount(t, s)

	tx := newTestTransaction(account.ID, "2025-03-01", "-42.50", "CARREFOUR")
	_, err := s.InsertTransactionIfAbsent(ctx, tx)
	require.NoError(t, err)

	updated, created, err := s.RecategorizeTransaction(ctx, RecategorizeParams{
		TransactionID: tx.ID,
		NewCategory:   &models.Category{Name: "Courses", ParentCategory: "Vie quotidienne", SubCategory: "Alimentation"},
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotZero(t, created.ID)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, created.ID, *updated.CategoryID)
}

func TestRecategorizeRollsBackCategoryOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Unknown transaction: the new category must not survive the failure.
	_, _, err := s.RecategorizeTransaction(ctx, RecategorizeParams{
		TransactionID: 9999,
		NewCategory:   &models.Category{Name: "Courses", ParentCategory: "Vie quotidienne", SubCategory: "Alimentation"},
	})
	assert.True(t, apperr.IsNotFound(err))

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestRecategorizeUnknownCategory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	account := newTestAccount(t, s)

	tx := newTestTransaction(account.ID, "2025-03-01", "-42.50", "CARREFOUR")
	_, err := s.InsertTransactionIfAbsent(ctx, tx)
	require.NoError(t, err)

	_, _, err = s.RecategorizeTransaction(ctx, RecategorizeParams{
		TransactionID: tx.ID,
		CategoryID:    9999,
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestAccounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &models.Account{Name: "BoursoBank", AccountType: "checking", IsActive: true}
	require.NoError(t, s.CreateAccount(ctx, a))

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "BoursoBank", got.Name)

	found, err := s.FindAccountByName(ctx, "BoursoBank")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, a.ID, found.ID)

	missing, err := s.FindAccountByName(ctx, "Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = s.GetAccount(ctx, 9999)
	assert.True(t, apperr.IsNotFound(err))

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
}
