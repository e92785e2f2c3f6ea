// Package ingest implements the bank-CSV ingestion pipeline: profile-driven
// parsing, per-row validation, duplicate detection and persistence, followed
// by automatic categorization of the newly imported rows.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"findash/internal/logging"
	"findash/internal/models"
	"findash/internal/profile"
	"findash/internal/rules"

	"github.com/google/uuid"
)

// Store is the persistence surface the importer needs.
type Store interface {
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	InsertTransactionIfAbsent(ctx context.Context, t *models.Transaction) (bool, error)
}

// Importer ingests bank CSV exports for one configured profile.
type Importer struct {
	store   Store
	engine  *rules.Engine
	profile *profile.Profile
	log     logging.Logger

	// Imports against the same account are serialized so the per-row
	// check-then-insert sequences of two overlapping files cannot
	// interleave and double-insert.
	mu         sync.Mutex
	accountMus map[int64]*sync.Mutex
}

// NewImporter creates an Importer for the given bank profile.
func NewImporter(store Store, engine *rules.Engine, prof *profile.Profile, logger logging.Logger) *Importer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Importer{
		store:      store,
		engine:     engine,
		profile:    prof,
		log:        logger,
		accountMus: make(map[int64]*sync.Mutex),
	}
}

func (im *Importer) accountLock(accountID int64) *sync.Mutex {
	im.mu.Lock()
	defer im.mu.Unlock()
	l, ok := im.accountMus[accountID]
	if !ok {
		l = &sync.Mutex{}
		im.accountMus[accountID] = l
	}
	return l
}

// Import parses the CSV payload and persists every valid, non-duplicate row
// as a transaction on the given account. Bad rows are counted and reported
// but never abort the batch. Newly inserted transactions are run through the
// rule engine in assign-if-unset mode before the stats are returned.
func (im *Importer) Import(ctx context.Context, r io.Reader, accountID int64) (*models.ImportStats, error) {
	if _, err := im.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	lock := im.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	batch := uuid.NewString()
	stats := &models.ImportStats{ErrorDetails: []string{}, ImportBatch: batch}

	reader := csv.NewReader(r)
	reader.Comma = im.profile.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	columns := columnIndex(header)

	var inserted []models.Transaction
	rowNum := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			stats.TotalRows++
			stats.Errors++
			stats.ErrorDetails = append(stats.ErrorDetails,
				fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if blankRecord(record) {
			rowNum--
			continue
		}
		stats.TotalRows++

		t, err := im.parseRow(record, columns, accountID, batch)
		if err != nil {
			stats.Errors++
			stats.ErrorDetails = append(stats.ErrorDetails,
				fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		ok, err := im.store.InsertTransactionIfAbsent(ctx, t)
		if err != nil {
			stats.Errors++
			stats.ErrorDetails = append(stats.ErrorDetails,
				fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if !ok {
			stats.Duplicates++
			continue
		}
		stats.Imported++
		inserted = append(inserted, *t)
	}

	categorized := 0
	if im.engine != nil && len(inserted) > 0 {
		categorized, err = im.engine.AssignIfUnset(ctx, inserted)
		if err != nil {
			return stats, fmt.Errorf("auto-categorize imported rows: %w", err)
		}
	}

	im.log.Info("CSV import finished",
		logging.F("account_id", accountID),
		logging.F("batch", batch),
		logging.F("total_rows", stats.TotalRows),
		logging.F("imported", stats.Imported),
		logging.F("duplicates", stats.Duplicates),
		logging.F("errors", stats.Errors),
		logging.F("categorized", categorized))

	return stats, nil
}

// parseRow validates one CSV record and converts it into a transaction.
// The transaction type is derived from the amount sign, never from any
// textual hint in the source row.
func (im *Importer) parseRow(record []string, columns map[string]int, accountID int64, batch string) (*models.Transaction, error) {
	cols := im.profile.Columns

	dateStr := fieldValue(record, columns, cols.Date)
	amountStr := fieldValue(record, columns, cols.Amount)
	if dateStr == "" || amountStr == "" {
		return nil, fmt.Errorf("missing required date or amount field")
	}

	amount, err := models.ParseAmount(amountStr)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(im.profile.DateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected %s format", dateStr, im.profile.DateLayout)
	}

	return &models.Transaction{
		AccountID:         accountID,
		Type:              models.TypeFromAmount(amount),
		Amount:            amount,
		Description:       fieldValue(record, columns, cols.Description),
		Merchant:          fieldValue(record, columns, cols.Merchant),
		Date:              date,
		CategoryParentCSV: fieldValue(record, columns, cols.CategoryParent),
		ImportBatch:       batch,
	}, nil
}

// columnIndex maps cleaned header names to their positions. The BOM some
// bank exports prepend to the first header cell is stripped.
func columnIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		columns[cleanField(name)] = i
	}
	return columns
}

func fieldValue(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return cleanField(record[idx])
}

// cleanField strips surrounding quote characters and whitespace.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

func blankRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
