package aggregate

import (
	"testing"
	"time"

	"findash/internal/models"
	"findash/internal/profile"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func tx(id int64, amount string, date time.Time, parent, sub string) models.Transaction {
	a := decimal.RequireFromString(amount)
	return models.Transaction{
		ID:             id,
		Amount:         a,
		Type:           models.TypeFromAmount(a),
		Date:           date,
		ParentCategory: parent,
		SubCategory:    sub,
	}
}

func testAggregator() *Aggregator {
	return New(profile.Boursorama())
}

func TestBuildTreeTotalsAndSort(t *testing.T) {
	agg := testAggregator()
	txs := []models.Transaction{
		tx(1, "-50.00", day(1), "Vie quotidienne", "Alimentation"),
		tx(2, "-30.00", day(2), "Vie quotidienne", "Alimentation"),
		tx(3, "-10.00", day(3), "Vie quotidienne", "Restauration"),
		tx(4, "-200.00", day(4), "Logement", "Charges"),
		tx(5, "1000.00", day(5), "Revenus", "Travail"), // credit, excluded from debit tree
	}

	tree := agg.BuildTree(txs, models.TypeDebit)

	assert.True(t, tree.Total.Equal(decimal.RequireFromString("290")))
	require.Len(t, tree.Parents, 2)

	// Parents descending by total.
	assert.Equal(t, "Logement", tree.Parents[0].Label)
	assert.Equal(t, "Vie quotidienne", tree.Parents[1].Label)

	// Parent total equals the sum of its sub totals.
	vie := tree.Parents[1]
	assert.True(t, vie.Total.Equal(decimal.RequireFromString("90")))
	require.Len(t, vie.Subs, 2)
	assert.Equal(t, "Alimentation", vie.Subs[0].Label)
	assert.True(t, vie.Subs[0].Total.Equal(decimal.RequireFromString("80")))
	assert.Equal(t, "Restauration", vie.Subs[1].Label)

	// Leaves descending by date.
	leaves := vie.Subs[0].Transactions
	require.Len(t, leaves, 2)
	assert.Equal(t, int64(2), leaves[0].ID)
	assert.Equal(t, int64(1), leaves[1].ID)

	// sum(parent totals) == tree total.
	var sum decimal.Decimal
	for _, p := range tree.Parents {
		sum = sum.Add(p.Total)
	}
	assert.True(t, sum.Equal(tree.Total))
}

func TestBuildTreeDirectionPartition(t *testing.T) {
	agg := testAggregator()
	txs := []models.Transaction{
		tx(1, "-50.00", day(1), "Vie quotidienne", "Alimentation"),
		tx(2, "1000.00", day(2), "Revenus", "Travail"),
	}

	income := agg.BuildTree(txs, models.TypeCredit)
	require.Len(t, income.Parents, 1)
	assert.Equal(t, "Revenus", income.Parents[0].Label)
	assert.True(t, income.Total.Equal(decimal.RequireFromString("1000")))
}

func TestBuildTreeFallbackLabels(t *testing.T) {
	agg := testAggregator()
	txs := []models.Transaction{
		tx(1, "-25.00", day(1), "", ""),
	}

	tree := agg.BuildTree(txs, models.TypeDebit)
	require.Len(t, tree.Parents, 1)
	assert.Equal(t, FallbackLabel, tree.Parents[0].Label)
	require.Len(t, tree.Parents[0].Subs, 1)
	assert.Equal(t, FallbackLabel, tree.Parents[0].Subs[0].Label)
}

func TestInternalTransfersExcludedEverywhere(t *testing.T) {
	agg := testAggregator()

	internal := tx(1, "-500.00", day(1), "", "")
	internal.CategoryParentCSV = "Mouvements internes débiteurs"
	internalIn := tx(2, "500.00", day(1), "", "")
	internalIn.CategoryParentCSV = "Mouvements internes créditeurs"

	txs := []models.Transaction{
		internal,
		internalIn,
		tx(3, "-50.00", day(2), "Vie quotidienne", "Alimentation"),
		tx(4, "1000.00", day(3), "Revenus", "Travail"),
	}

	expenses := agg.BuildTree(txs, models.TypeDebit)
	assert.True(t, expenses.Total.Equal(decimal.RequireFromString("50")))

	income := agg.BuildTree(txs, models.TypeCredit)
	assert.True(t, income.Total.Equal(decimal.RequireFromString("1000")))

	totals := agg.GrandTotals(txs)
	assert.True(t, totals.Income.Equal(decimal.RequireFromString("1000")))
	assert.True(t, totals.Expenses.Equal(decimal.RequireFromString("50")))
	assert.True(t, totals.Available.Equal(decimal.RequireFromString("950")))

	buckets := agg.Cashflow(txs)
	require.Len(t, buckets, 1)
	assert.True(t, buckets[0].Income.Equal(decimal.RequireFromString("1000")))
}

func TestCashflowBuckets(t *testing.T) {
	agg := testAggregator()
	txs := []models.Transaction{
		tx(1, "-50.00", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "Vie quotidienne", "Alimentation"),
		tx(2, "-30.00", time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), "Logement", "Charges"),
		tx(3, "2000.00", time.Date(2025, 1, 28, 0, 0, 0, 0, time.UTC), "Revenus", "Travail"),
		tx(4, "-10.00", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), "Vie quotidienne", "Restauration"),
	}

	buckets := agg.Cashflow(txs)
	require.Len(t, buckets, 2) // February has no activity and is not emitted

	jan := buckets[0]
	assert.Equal(t, "2025-01", jan.Month)
	assert.True(t, jan.Income.Equal(decimal.RequireFromString("2000")))
	assert.True(t, jan.Expenses["Vie quotidienne"].Equal(decimal.RequireFromString("50")))
	assert.True(t, jan.Expenses["Logement"].Equal(decimal.RequireFromString("30")))

	mar := buckets[1]
	assert.Equal(t, "2025-03", mar.Month)
	assert.True(t, mar.Income.IsZero())
	assert.True(t, mar.Expenses["Vie quotidienne"].Equal(decimal.RequireFromString("10")))
}

func TestGrandTotalsEmptyInput(t *testing.T) {
	agg := testAggregator()
	totals := agg.GrandTotals(nil)
	assert.True(t, totals.Income.IsZero())
	assert.True(t, totals.Expenses.IsZero())
	assert.True(t, totals.Available.IsZero())
}
