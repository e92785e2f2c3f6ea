// Package models provides the data structures shared across the application.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction. It is derived from the
// sign of the raw amount at parse time and is authoritative for display:
// consumers take the absolute amount and re-apply sign by type.
type TransactionType string

const (
	// TypeDebit marks outgoing money (negative raw amount).
	TypeDebit TransactionType = "debit"
	// TypeCredit marks incoming money (positive raw amount).
	TypeCredit TransactionType = "credit"
)

// MatchField names the transaction field a categorization rule tests.
type MatchField string

const (
	MatchDescription MatchField = "description"
	MatchMerchant    MatchField = "merchant"
)

// ValidMatchField reports whether s is one of the recognized match fields.
func ValidMatchField(s string) bool {
	return s == string(MatchDescription) || s == string(MatchMerchant)
}

// Transaction is a single bank movement. Transactions are created only by
// CSV ingestion and mutated only by category assignment.
type Transaction struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	CategoryID  *int64          `json:"category_id"`
	Type        TransactionType `json:"transaction_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Merchant    string          `json:"merchant"`
	Date        time.Time       `json:"date"`

	// CategoryParentCSV carries the raw parent-category label from the bank
	// export. It is used only for internal-transfer detection.
	CategoryParentCSV string `json:"category_parent_csv"`

	// ImportBatch groups the transactions of one ingestion run for audit.
	ImportBatch string    `json:"import_batch,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Resolved category labels, filled by the store when listing. Empty when
	// the transaction is uncategorized.
	CategoryName   string `json:"category_name,omitempty"`
	ParentCategory string `json:"parent_category,omitempty"`
	SubCategory    string `json:"sub_category,omitempty"`
}

// AbsAmount returns the magnitude of the transaction amount. Direction is
// carried by Type, never by the sign of the stored amount.
func (t *Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// Category is a leaf category inside the two-level grouping hierarchy.
// ParentCategory and SubCategory are denormalized grouping labels, not
// foreign keys. Duplicate (parent, sub, name) triples are tolerated.
type Category struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	ParentCategory string `json:"parent_category"`
	SubCategory    string `json:"sub_category"`
}

// CategorizationRule binds a keyword to a category. Rules fire in ascending
// creation order; the first match wins.
type CategorizationRule struct {
	ID         int64      `json:"id"`
	Keyword    string     `json:"keyword"`
	CategoryID int64      `json:"category_id"`
	MatchField MatchField `json:"match_field"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Account is a bank account transactions belong to. The balance is
// informational only and never reconciled here.
type Account struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	IsActive    bool            `json:"is_active"`
}

// ImportStats summarizes one ingestion run.
// TotalRows == Imported + Duplicates + Errors for every run.
type ImportStats struct {
	TotalRows    int      `json:"total_rows"`
	Imported     int      `json:"imported"`
	Duplicates   int      `json:"duplicates"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"error_details"`
	ImportBatch  string   `json:"import_batch,omitempty"`
}
