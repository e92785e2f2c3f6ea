// Package aggregate derives the dashboard views from raw transactions:
// direction-partitioned two-level category trees, monthly cashflow buckets
// and income/expense grand totals.
//
// Internal transfers are excluded from every aggregate this package
// produces; they move money between the user's own accounts and would
// otherwise inflate both sides of the ledger.
package aggregate

import (
	"sort"

	"findash/internal/models"
	"findash/internal/profile"

	"github.com/shopspring/decimal"
)

// FallbackLabel groups transactions whose resolved category leaves the
// parent or sub label empty.
const FallbackLabel = "Non catégorisé"

// CategoryTree is the two-level (parent -> sub -> transactions) aggregation
// for one direction. Totals are sums of absolute amounts; the direction of
// the money is carried by the tree, not by signs inside it.
type CategoryTree struct {
	Direction models.TransactionType `json:"direction"`
	Total     decimal.Decimal        `json:"total"`
	Parents   []ParentNode           `json:"parents"`
}

// ParentNode is one top-level grouping label and its sub-groups.
type ParentNode struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
	Subs  []SubNode       `json:"subs"`
}

// SubNode is one second-level grouping label and its transactions.
type SubNode struct {
	Label        string               `json:"label"`
	Total        decimal.Decimal      `json:"total"`
	Transactions []models.Transaction `json:"transactions"`
}

// CashflowBucket accumulates one calendar month of activity: the income
// total plus one expense total per parent category.
type CashflowBucket struct {
	Month    string                     `json:"month"`
	Income   decimal.Decimal            `json:"income"`
	Expenses map[string]decimal.Decimal `json:"expenses"`
}

// Totals are the grand totals of the filtered transaction set.
// Available is signed: income minus expenses.
type Totals struct {
	Income    decimal.Decimal `json:"income"`
	Expenses  decimal.Decimal `json:"expenses"`
	Available decimal.Decimal `json:"available"`
}

// Aggregator builds dashboard aggregates for one bank profile. The profile
// supplies the internal-transfer labels.
type Aggregator struct {
	profile *profile.Profile
}

// New creates an Aggregator for the given profile.
func New(prof *profile.Profile) *Aggregator {
	return &Aggregator{profile: prof}
}

// FilterInternal returns the transactions that are not internal transfers.
// The check reads the raw CSV parent-category label, not the resolved
// category: internal transfers are recognized from the bank export itself.
func (a *Aggregator) FilterInternal(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if a.profile.IsInternalTransfer(t.CategoryParentCSV) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// BuildTree groups the non-internal transactions of the requested direction
// into a parent -> sub tree. Parents and subs are sorted descending by
// total, leaf transactions descending by date; ties break on ascending
// identifier so the output is fully deterministic.
func (a *Aggregator) BuildTree(txs []models.Transaction, direction models.TransactionType) *CategoryTree {
	type subKey struct{ parent, sub string }

	parentTotals := map[string]decimal.Decimal{}
	subTotals := map[subKey]decimal.Decimal{}
	subTxs := map[subKey][]models.Transaction{}
	var total decimal.Decimal

	for _, t := range a.FilterInternal(txs) {
		if t.Type != direction {
			continue
		}
		parent := labelOr(t.ParentCategory)
		sub := labelOr(t.SubCategory)
		amount := t.AbsAmount()

		total = total.Add(amount)
		parentTotals[parent] = parentTotals[parent].Add(amount)
		k := subKey{parent, sub}
		subTotals[k] = subTotals[k].Add(amount)
		subTxs[k] = append(subTxs[k], t)
	}

	tree := &CategoryTree{Direction: direction, Total: total}
	for parent, parentTotal := range parentTotals {
		node := ParentNode{Label: parent, Total: parentTotal}
		for k, subTotal := range subTotals {
			if k.parent != parent {
				continue
			}
			leaves := subTxs[k]
			sort.SliceStable(leaves, func(i, j int) bool {
				if !leaves[i].Date.Equal(leaves[j].Date) {
					return leaves[i].Date.After(leaves[j].Date)
				}
				return leaves[i].ID < leaves[j].ID
			})
			node.Subs = append(node.Subs, SubNode{
				Label:        k.sub,
				Total:        subTotal,
				Transactions: leaves,
			})
		}
		sort.SliceStable(node.Subs, func(i, j int) bool {
			if !node.Subs[i].Total.Equal(node.Subs[j].Total) {
				return node.Subs[i].Total.GreaterThan(node.Subs[j].Total)
			}
			return node.Subs[i].Label < node.Subs[j].Label
		})
		tree.Parents = append(tree.Parents, node)
	}
	sort.SliceStable(tree.Parents, func(i, j int) bool {
		if !tree.Parents[i].Total.Equal(tree.Parents[j].Total) {
			return tree.Parents[i].Total.GreaterThan(tree.Parents[j].Total)
		}
		return tree.Parents[i].Label < tree.Parents[j].Label
	})

	return tree
}

// Cashflow buckets the non-internal transactions by calendar month. Each
// bucket holds the month's income total and one expense total per parent
// category. Buckets come back sorted by month ascending; months without
// activity are not emitted.
func (a *Aggregator) Cashflow(txs []models.Transaction) []CashflowBucket {
	buckets := map[string]*CashflowBucket{}

	for _, t := range a.FilterInternal(txs) {
		month := t.Date.Format("2006-01")
		b, ok := buckets[month]
		if !ok {
			b = &CashflowBucket{Month: month, Expenses: map[string]decimal.Decimal{}}
			buckets[month] = b
		}
		switch t.Type {
		case models.TypeCredit:
			b.Income = b.Income.Add(t.AbsAmount())
		case models.TypeDebit:
			parent := labelOr(t.ParentCategory)
			b.Expenses[parent] = b.Expenses[parent].Add(t.AbsAmount())
		}
	}

	out := make([]CashflowBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// GrandTotals computes the income and expense sums over the non-internal
// transactions and the signed available amount.
func (a *Aggregator) GrandTotals(txs []models.Transaction) Totals {
	var totals Totals
	for _, t := range a.FilterInternal(txs) {
		switch t.Type {
		case models.TypeCredit:
			totals.Income = totals.Income.Add(t.AbsAmount())
		case models.TypeDebit:
			totals.Expenses = totals.Expenses.Add(t.AbsAmount())
		}
	}
	totals.Available = totals.Income.Sub(totals.Expenses)
	return totals
}

func labelOr(label string) string {
	if label == "" {
		return FallbackLabel
	}
	return label
}
