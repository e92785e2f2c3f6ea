// Package export writes stored transactions back out as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"findash/internal/logging"
	"findash/internal/models"

	"github.com/gocarina/gocsv"
)

// row is the flat CSV shape of one exported transaction.
type row struct {
	ID             int64  `csv:"id"`
	AccountID      int64  `csv:"account_id"`
	Date           string `csv:"date"`
	Type           string `csv:"transaction_type"`
	Amount         string `csv:"amount"`
	Description    string `csv:"description"`
	Merchant       string `csv:"merchant"`
	Category       string `csv:"category"`
	ParentCategory string `csv:"parent_category"`
	SubCategory    string `csv:"sub_category"`
}

// WriteTransactions marshals the transactions as semicolon-separated CSV.
// Amounts are emitted with two decimal places and the sign carried by the
// stored value.
func WriteTransactions(w io.Writer, transactions []models.Transaction) error {
	rows := make([]row, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, row{
			ID:             t.ID,
			AccountID:      t.AccountID,
			Date:           t.Date.Format("2006-01-02"),
			Type:           string(t.Type),
			Amount:         t.Amount.StringFixed(2),
			Description:    t.Description,
			Merchant:       t.Merchant,
			Category:       t.CategoryName,
			ParentCategory: t.ParentCategory,
			SubCategory:    t.SubCategory,
		})
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = ';'
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("write CSV data: %w", err)
	}
	return nil
}

// WriteTransactionsToFile writes the transactions to a new CSV file at path.
func WriteTransactionsToFile(path string, transactions []models.Transaction, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logger.WithError(cerr).Warn("Failed to close export file")
		}
	}()

	if err := WriteTransactions(file, transactions); err != nil {
		return err
	}

	logger.Info("Transactions exported",
		logging.F("file", path), logging.F("count", len(transactions)))
	return nil
}
